package autofill

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobagent-engine/internal/domain"
	"jobagent-engine/internal/logging"
	"jobagent-engine/internal/page"
	"jobagent-engine/internal/rules"
)

const applicationForm = `<html><body><form>
  <label for="fn">First name</label><input id="fn" name="first">
  <label>Surname <input name="q2"></label>
  <div><input type="email" name="contact" placeholder="Email address"></div>
  <div><input name="mob" value="07700900000"> Mobile</div>
  <label for="ctry">Country</label>
  <select id="ctry" name="ctry">
    <option value="">Choose</option>
    <option value="us">United States</option>
    <option value="gb">United Kingdom</option>
  </select>
  <label for="reloc">Willing to relocate?</label><input type="checkbox" id="reloc" name="reloc">
  <p>Are you authorised to work in the UK?
    <input type="radio" name="visa" value="yes">
    <input type="radio" name="visa" value="no">
  </p>
  <label for="cl">Cover letter</label><textarea id="cl" name="cl"></textarea>
  <label for="fav">Favourite colour</label><input id="fav" name="fav">
  <input type="hidden" name="email_hidden">
  <input type="submit" value="Apply">
</form></body></html>`

func profile() *domain.AutofillProfile {
	return &domain.AutofillProfile{
		PersonalInfo: domain.PersonalInfo{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
			Phone:     "07700900000",
			Country:   "United Kingdom",
		},
		Preferences: domain.Preferences{
			WillingToRelocate: true,
			WorkAuthorization: "yes",
			CoverLetter:       "Dear hiring manager",
		},
	}
}

type changes struct {
	mu  sync.Mutex
	got []Change
}

func (c *changes) FieldChanged(ch Change) {
	c.mu.Lock()
	c.got = append(c.got, ch)
	c.mu.Unlock()
}

func TestFillTypeAware(t *testing.T) {
	p, err := page.FromHTML("https://jobs.example.com/apply", applicationForm)
	require.NoError(t, err)

	rec := &changes{}
	n, err := New(0, rec, logging.Nop()).Fill(context.Background(), p, profile())
	require.NoError(t, err)

	// first, surname, email, mobile (already correct), country, relocate,
	// visa "yes", cover letter.
	assert.Equal(t, 8, n)

	p.Read(func(doc *goquery.Document) {
		assert.Equal(t, "Ada", doc.Find(`input[name="first"]`).AttrOr("value", ""))
		assert.Equal(t, "Lovelace", doc.Find(`input[name="q2"]`).AttrOr("value", ""))
		assert.Equal(t, "ada@example.com", doc.Find(`input[name="contact"]`).AttrOr("value", ""))
		assert.Equal(t, "gb", doc.Find(`option[selected]`).AttrOr("value", ""))
		_, checked := doc.Find(`#reloc`).Attr("checked")
		assert.True(t, checked)
		_, yes := doc.Find(`input[name="visa"][value="yes"]`).Attr("checked")
		_, no := doc.Find(`input[name="visa"][value="no"]`).Attr("checked")
		assert.True(t, yes)
		assert.False(t, no)
		assert.Equal(t, "Dear hiring manager", doc.Find(`textarea`).Text())
		assert.Empty(t, doc.Find(`input[name="fav"]`).AttrOr("value", ""))
		assert.Empty(t, doc.Find(`input[name="email_hidden"]`).AttrOr("value", ""))
	})

	// Seven writes, each followed by input then change; the unchanged
	// phone field is silent.
	require.Len(t, rec.got, 14)
	assert.Equal(t, "input", rec.got[0].Event)
	assert.Equal(t, "change", rec.got[1].Event)
	assert.Equal(t, FieldFirstName, rec.got[0].Type)
	for _, c := range rec.got {
		assert.NotEqual(t, "mob", c.Field)
	}
}

func TestFillIsIdempotent(t *testing.T) {
	p, err := page.FromHTML("", applicationForm)
	require.NoError(t, err)
	e := New(0, nil, logging.Nop())

	first, err := e.Fill(context.Background(), p, profile())
	require.NoError(t, err)

	rec := &changes{}
	second, err := New(0, rec, logging.Nop()).Fill(context.Background(), p, profile())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Empty(t, rec.got)
}

func TestFillErrors(t *testing.T) {
	p, err := page.FromHTML("", `<form><input name="favourite_colour"></form>`)
	require.NoError(t, err)
	e := New(0, nil, logging.Nop())

	_, err = e.Fill(context.Background(), p, nil)
	assert.ErrorIs(t, err, ErrNoProfileConfigured)

	_, err = e.Fill(context.Background(), p, &domain.AutofillProfile{})
	assert.ErrorIs(t, err, ErrNoProfileConfigured)

	_, err = e.Fill(context.Background(), p, profile())
	assert.ErrorIs(t, err, ErrNoCompatibleFields)
}

func TestFillStopsOnCancel(t *testing.T) {
	p, err := page.FromHTML("", applicationForm)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = New(0, nil, logging.Nop()).Fill(ctx, p, profile())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFullNameOrderedBeforeFirstName(t *testing.T) {
	assert.Less(t, rules.Index(FieldRules, FieldFullName), rules.Index(FieldRules, FieldFirstName))

	p, err := page.FromHTML("", `<div><input name="fullName" placeholder="first name"></div>`)
	require.NoError(t, err)

	var search string
	p.Read(func(doc *goquery.Document) {
		fields := enumerate(doc)
		require.Len(t, fields, 1)
		search = fields[0].search()
	})
	typ, ok := Classify(search)
	require.True(t, ok)
	assert.Equal(t, FieldFullName, typ)

	n, err := New(0, nil, logging.Nop()).Fill(context.Background(), p, profile())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	p.Read(func(doc *goquery.Document) {
		assert.Equal(t, "Ada Lovelace", doc.Find("input").AttrOr("value", ""))
	})
}

func TestClassify(t *testing.T) {
	cases := map[string]FieldType{
		"email address":                       FieldEmail,
		"address_line_1 street address":       FieldAddress,
		"town/city":                           FieldCity,
		"postcode":                            FieldZipCode,
		"linkedin profile url":                FieldLinkedIn,
		"personal website":                    FieldPortfolio,
		"years of experience":                 FieldYearsExperience,
		"job title":                           FieldCurrentTitle,
		"expected salary":                     FieldSalary,
		"earliest start date":                 FieldStartDate,
		"are you authorized to work in the uk": FieldWorkAuthorization,
		"name":                                FieldFullName,
		"name name":                           FieldFullName,
	}
	for in, want := range cases {
		got, ok := Classify(in)
		if assert.True(t, ok, in) {
			assert.Equal(t, want, got, in)
		}
	}

	for _, in := range []string{"ethnicity", "company name", "favourite colour"} {
		_, ok := Classify(in)
		assert.False(t, ok, in)
	}
}

func TestInferLabel(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<form>
<label for="a">Phone number</label><input id="a">
<label>Town <input id="b"></label>
<div><input id="c" placeholder="Postcode"></div>
<div>Pick one <select id="d"><option>One</option><option>Two</option></select></div>
</form>`))
	require.NoError(t, err)

	assert.Equal(t, "Phone number", InferLabel(doc, doc.Find("#a")))
	assert.Equal(t, "Town", InferLabel(doc, doc.Find("#b")))
	assert.Equal(t, "Postcode", InferLabel(doc, doc.Find("#c")))
	assert.Equal(t, "Pick one", InferLabel(doc, doc.Find("#d")))
}

func TestFillSelectBlankValueLeavesSelection(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<select name="c">
  <option value="us">United States</option>
  <option value="gb" selected>United Kingdom</option>
</select>`))
	require.NoError(t, err)
	sel := doc.Find("select")

	matched, changed := fillSelect(sel, "   ")
	assert.False(t, matched)
	assert.False(t, changed)
	assert.Equal(t, "gb", sel.Find("option[selected]").AttrOr("value", ""))

	matched, changed = fillSelect(sel, "united states")
	assert.True(t, matched)
	assert.True(t, changed)
	assert.Equal(t, "us", sel.Find("option[selected]").AttrOr("value", ""))
}
