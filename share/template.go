package share

import (
	"text/template"

	"github.com/dustin/go-humanize"
)

var (
	TemplateFuncMap = template.FuncMap{
		"fn": func(value interface{}) string {
			switch e := value.(type) {
			case float32:
				return humanize.CommafWithDigits(float64(e), 1)
			case float64:
				return humanize.CommafWithDigits(e, 1)
			case *float64:
				if e == nil {
					return "-"
				}
				return humanize.CommafWithDigits(*e, 1)
			case int:
				return humanize.Comma(int64(e))
			case int64:
				return humanize.Comma(e)
			}
			return ""
		},
		"pct": func(value *float64) string {
			if value == nil {
				return "-"
			}
			return humanize.FtoaWithDigits(*value*100, 1) + "%"
		},
		"ms": func(value interface{}) string {
			var ms float64
			switch e := value.(type) {
			case int64:
				ms = float64(e)
			case float64:
				ms = e
			case *float64:
				if e == nil {
					return "-"
				}
				ms = *e
			default:
				return ""
			}
			return humanize.FtoaWithDigits(ms/1000, 1) + "s"
		},
	}
)
