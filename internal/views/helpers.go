package views

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// Funcs returns the function map available to every template: the sprig
// library plus the site helpers, which win on name clashes.
func Funcs(now func() time.Time) template.FuncMap {
	if now == nil {
		now = time.Now
	}
	funcs := sprig.FuncMap()
	funcs["getCurrentYear"] = func() int { return CurrentYear(now) }
	funcs["screamIt"] = ScreamIt
	return funcs
}

// CurrentYear returns the calendar year of now(), evaluated on every call.
func CurrentYear(now func() time.Time) int {
	return now().Year()
}

// ScreamIt upper-cases v. Non-string values are formatted first; nil yields "".
func ScreamIt(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToUpper(s)
	case fmt.Stringer:
		return strings.ToUpper(s.String())
	default:
		return strings.ToUpper(fmt.Sprint(v))
	}
}
