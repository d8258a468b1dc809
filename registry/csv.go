package registry

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/dimchansky/utfbom"
	"github.com/pkg/errors"
)

// LoadCSV reads a registry table. The first row names the columns; id and
// name are required, the rest may be left out or empty.
func LoadCSV(r io.Reader) (*Registry, error) {
	sr, _ := utfbom.Skip(r)

	cr := csv.NewReader(sr)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	header, err := cr.Read()
	if err == io.EOF {
		return newRegistry(nil)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}

	column := make(map[string]int, len(header))
	for i, name := range header {
		column[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range []string{"id", "name"} {
		if _, ok := column[name]; !ok {
			return nil, errors.Errorf("registry: csv column %q is missing", name)
		}
	}

	var entries []Entry
	for line := 2; ; line++ {
		d, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.WithStack(err)
		}

		row := csvRow{d: d, column: column}
		e := Entry{
			ID:             row.getInt("id"),
			Name:           row.getStr("name"),
			Cooldown:       row.getOptFloat("cooldown"),
			Charges:        row.getInt("charges"),
			HasteScaled:    row.getBool("haste_scaled"),
			Talent:         row.getInt("talent"),
			Buff:           row.getInt("buff"),
			BuffMultiplier: row.getFloat("buff_multiplier"),
			Undetectable:   row.getBool("undetectable"),
			Recommended:    row.getFloat("recommended"),
			AverageIssue:   row.getFloat("average_issue"),
			MajorIssue:     row.getFloat("major_issue"),
		}
		if row.err != nil {
			return nil, errors.Wrapf(row.err, "registry: csv line %d", line)
		}

		entries = append(entries, e)
	}

	return newRegistry(entries)
}

type csvRow struct {
	d      []string
	column map[string]int
	err    error
}

func (r *csvRow) getStr(name string) string {
	idx, ok := r.column[name]
	if !ok || idx >= len(r.d) {
		return ""
	}
	return strings.TrimSpace(r.d[idx])
}

func (r *csvRow) getInt(name string) int {
	s := r.getStr(name)
	if s == "" {
		return 0
	}

	v, err := strconv.Atoi(s)
	if err != nil && r.err == nil {
		r.err = errors.Wrapf(err, "column %s", name)
	}
	return v
}

func (r *csvRow) getFloat(name string) float64 {
	s := r.getStr(name)
	if s == "" {
		return 0
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil && r.err == nil {
		r.err = errors.Wrapf(err, "column %s", name)
	}
	return v
}

func (r *csvRow) getOptFloat(name string) *float64 {
	if r.getStr(name) == "" {
		return nil
	}
	v := r.getFloat(name)
	return &v
}

func (r *csvRow) getBool(name string) bool {
	switch strings.ToLower(r.getStr(name)) {
	case "", "0", "n", "no", "false":
		return false
	case "1", "y", "yes", "true":
		return true
	}

	if r.err == nil {
		r.err = errors.Errorf("column %s: %q is not a boolean", name, r.getStr(name))
	}
	return false
}
