// Package autofill fills application forms on a page from the stored
// profile.
package autofill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/page"
	"jobagent-engine/internal/scan"
)

var (
	ErrNoProfileConfigured = errors.New("no autofill profile configured")
	ErrNoCompatibleFields  = errors.New("no compatible form fields found")
)

const DefaultFieldPause = 100 * time.Millisecond

// maxLabelLen bounds a label inferred from ancestor text; longer text is a
// container, not a label.
const maxLabelLen = 120

// Change is what a listening form framework is told after a programmatic
// write. Event is "input" or "change".
type Change struct {
	Event string    `json:"event"`
	Field string    `json:"field"`
	Type  FieldType `json:"type"`
	Value string    `json:"value"`
}

type FieldListener interface {
	FieldChanged(Change)
}

type ListenerFunc func(Change)

func (f ListenerFunc) FieldChanged(c Change) { f(c) }

type Engine struct {
	log      *logging.Logger
	pause    time.Duration
	listener FieldListener
}

func New(pause time.Duration, listener FieldListener, log *logging.Logger) *Engine {
	if pause < 0 {
		pause = DefaultFieldPause
	}
	if listener == nil {
		listener = ListenerFunc(func(Change) {})
	}
	return &Engine{log: log.Component("autofill"), pause: pause, listener: listener}
}

// field is one enumerated form control.
type field struct {
	sel         *goquery.Selection
	tag         string
	kind        string
	name        string
	id          string
	placeholder string
	label       string
}

func (f field) key() string {
	if f.name != "" {
		return f.name
	}
	if f.id != "" {
		return f.id
	}
	return f.tag
}

func (f field) search() string {
	return strings.ToLower(strings.Join([]string{f.name, f.id, f.placeholder, f.label}, " "))
}

// Fill runs one pass over every input, select and textarea on the page and
// returns how many fields now hold the profile's value. Fields with no
// matching rule or no profile value are skipped.
func (e *Engine) Fill(ctx context.Context, p *page.Page, profile *domain.AutofillProfile) (int, error) {
	if profile == nil || profile.IsZero() {
		return 0, ErrNoProfileConfigured
	}

	var fields []field
	p.Read(func(doc *goquery.Document) {
		fields = enumerate(doc)
	})

	filled := 0
	for _, f := range fields {
		if err := ctx.Err(); err != nil {
			return filled, err
		}

		typ, ok := Classify(f.search())
		if !ok {
			continue
		}
		value := Value(*profile, typ)
		if value == "" {
			continue
		}

		matched, changed := e.apply(p, f, typ, value)
		if !matched {
			continue
		}
		filled++
		if !changed {
			continue
		}

		e.log.Debug("field filled", "field", f.key(), "type", typ)
		e.listener.FieldChanged(Change{Event: "input", Field: f.key(), Type: typ, Value: value})
		e.listener.FieldChanged(Change{Event: "change", Field: f.key(), Type: typ, Value: value})

		if e.pause > 0 {
			select {
			case <-ctx.Done():
				return filled, ctx.Err()
			case <-time.After(e.pause):
			}
		}
	}

	if filled == 0 {
		return 0, ErrNoCompatibleFields
	}
	e.log.Info("autofill complete", "filled", filled, "fields", len(fields))
	return filled, nil
}

// apply writes value into f. matched means the field ends up holding the
// value; changed means a write happened.
func (e *Engine) apply(p *page.Page, f field, typ FieldType, value string) (matched, changed bool) {
	defer func() {
		if rec := recover(); rec != nil {
			e.log.Warn("field fill failed", "field", f.key(), "err", fmt.Sprint(rec))
			matched, changed = false, false
		}
	}()

	p.Apply(func(doc *goquery.Document) {
		switch {
		case f.kind == "checkbox":
			matched, changed = setChecked(f.sel, affirmative(value))
		case f.kind == "radio":
			matched, changed = fillRadio(doc, f, value)
		case f.tag == "select":
			matched, changed = fillSelect(f.sel, value)
		case f.tag == "textarea":
			if f.sel.Text() == value {
				matched = true
				return
			}
			f.sel.SetText(value)
			matched, changed = true, true
		default:
			if cur, _ := f.sel.Attr("value"); cur == value {
				matched = true
				return
			}
			f.sel.SetAttr("value", value)
			matched, changed = true, true
		}
	})
	return matched, changed
}

var skippedInputs = map[string]bool{
	"hidden": true, "submit": true, "button": true, "reset": true, "file": true, "image": true,
}

func enumerate(doc *goquery.Document) []field {
	var out []field
	doc.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		kind := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "")))
		if tag == "input" && kind == "" {
			kind = "text"
		}
		if tag == "input" && skippedInputs[kind] {
			return
		}
		if _, disabled := s.Attr("disabled"); disabled {
			return
		}

		f := field{
			sel:         s,
			tag:         tag,
			kind:        kind,
			name:        s.AttrOr("name", ""),
			id:          s.AttrOr("id", ""),
			placeholder: s.AttrOr("placeholder", ""),
		}
		f.label = InferLabel(doc, s)
		out = append(out, f)
	})
	return out
}

// InferLabel returns the text of label[for=id], else the parent's text with
// the field's own text removed, else the placeholder.
func InferLabel(doc *goquery.Document, s *goquery.Selection) string {
	if id := s.AttrOr("id", ""); id != "" {
		var text string
		doc.Find("label").EachWithBreak(func(_ int, l *goquery.Selection) bool {
			if l.AttrOr("for", "") == id {
				text = scan.CleanText(l.Text())
			}
			return text == ""
		})
		if text != "" {
			return text
		}
	}

	if parent := s.Parent(); parent.Length() > 0 {
		own := scan.CleanText(s.Text())
		text := scan.CleanText(parent.Text())
		if own != "" {
			text = scan.CleanText(strings.Replace(text, own, "", 1))
		}
		if text != "" && len([]rune(text)) <= maxLabelLen {
			return text
		}
	}

	return scan.CleanText(s.AttrOr("placeholder", ""))
}

func affirmative(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true":
		return true
	}
	return false
}

func negative(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "no", "false", "n", "0":
		return true
	}
	return false
}

func setChecked(s *goquery.Selection, want bool) (matched, changed bool) {
	_, cur := s.Attr("checked")
	if cur == want {
		return true, false
	}
	if want {
		s.SetAttr("checked", "checked")
	} else {
		s.RemoveAttr("checked")
	}
	return true, true
}

// fillRadio treats a radio whose value reads as "no" as the negative
// option of its group. Checking one radio clears its siblings by name.
func fillRadio(doc *goquery.Document, f field, value string) (matched, changed bool) {
	want := affirmative(value)
	if negative(f.sel.AttrOr("value", "")) {
		want = !want
	}
	if !want {
		return false, false
	}

	matched, changed = setChecked(f.sel, true)
	if changed && f.name != "" {
		doc.Find(`input[type="radio"]`).Each(func(_ int, r *goquery.Selection) {
			if r.AttrOr("name", "") == f.name && r.Get(0) != f.sel.Get(0) {
				r.RemoveAttr("checked")
			}
		})
	}
	return matched, changed
}

// fillSelect picks the first option whose text or value contains value,
// ignoring case.
func fillSelect(s *goquery.Selection, value string) (matched, changed bool) {
	want := strings.ToLower(strings.TrimSpace(value))
	if want == "" {
		return false, false
	}
	var pick *goquery.Selection
	s.Find("option").EachWithBreak(func(_ int, o *goquery.Selection) bool {
		text := strings.ToLower(scan.CleanText(o.Text()))
		val := strings.ToLower(o.AttrOr("value", ""))
		if strings.Contains(text, want) || (val != "" && strings.Contains(val, want)) {
			pick = o
			return false
		}
		return true
	})
	if pick == nil {
		return false, false
	}
	if _, sel := pick.Attr("selected"); sel {
		return true, false
	}
	s.Find("option").RemoveAttr("selected")
	pick.SetAttr("selected", "selected")
	return true, true
}
