package cmd

import (
	"context"
	"io"
	"text/template"

	"cast_check/analysis"
	"cast_check/fight"
	"cast_check/registry"
	"cast_check/server"
	"cast_check/share"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	fightPaths   []string
	outputFormat string
)

var tmplReport = template.Must(template.New("report").Funcs(share.TemplateFuncMap).Parse(
	`{{ range $i, $r := .Reports }}{{ if $i }}
{{ end }}Fight {{ $r.Window.Start }} - {{ $r.Window.End }} ({{ ms $r.Window.DurationMs }})
{{ range $r.Results }}  {{ printf "%-28s" .Name }} {{ printf "%4s" (fn .Casts) }} / {{ printf "%-4s" (fn .MaxCasts) }} {{ printf "%6s" (pct .Efficiency) }}{{ if .CanBeImproved }}  can be improved{{ end }}
{{ end }}{{ range $r.Failures }}  ! {{ .Name }} ({{ .AbilityID }}): {{ .Message }}
{{ end }}{{ end }}`))

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score the cooldown usage of parsed fight files",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(fightPaths) == 0 {
			return errors.New("no --fight given")
		}
		return runAnalyze(cmd.Context(), cmd.OutOrStdout(), fightPaths, cfg.Registry, cfg.Workers, outputFormat)
	},
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&fightPaths, "fight", nil, "Fight file (JSON), may be repeated")
	analyzeCmd.Flags().StringVar(&outputFormat, "format", "text", "Output format (json, text)")
}

func runAnalyze(ctx context.Context, w io.Writer, paths []string, registryPath string, workers int, format string) error {
	if format != "json" && format != "text" {
		return errors.Errorf("unknown format %q", format)
	}

	reg, err := registry.Open(registryPath)
	if err != nil {
		return err
	}
	specs := reg.Specs()

	inputs := make([]*analysis.Input, len(paths))
	for i, path := range paths {
		f, err := fight.Open(path)
		if err != nil {
			return errors.Wrap(err, path)
		}
		inputs[i] = f.Input(specs)
	}

	reports, err := analysis.ComputeAll(ctx, inputs, workers, func(done, total int) {
		logrus.Debugf("%d / %d", done, total)
	})
	if err != nil {
		return err
	}
	for _, r := range reports {
		share.CaptureFailures(r)
	}

	resp := server.AnalyzeResponse{Reports: reports}

	if format == "json" {
		b, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(&resp, "", "  ")
		if err != nil {
			return errors.WithStack(err)
		}
		b = append(b, '\n')
		_, err = w.Write(b)
		return errors.WithStack(err)
	}

	return errors.WithStack(tmplReport.Execute(w, &resp))
}
