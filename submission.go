package formstate

import (
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"

	"github.com/goliatone/go-formstate/fieldpath"
)

// Entry is one flat name/value pair from the transport layer. Value is
// usually a string or a *multipart.FileHeader.
type Entry struct {
	Name  string
	Value any
}

// Submission is one parsed snapshot of transport input. It is not modified
// after ParseSubmission returns.
type Submission struct {
	// Intent is the raw serialized intent, nil when none was submitted.
	Intent *string
	// Payload is the value tree folded from the entries.
	Payload map[string]any
	// Fields lists the raw field names seen, in first-seen order.
	Fields []string
}

// ParseSubmission folds entries into a Submission. A name repeated across
// entries collects its values into a list in submission order. The entry named
// cfg.IntentName is lifted into Submission.Intent and left out of the payload.
// Entries whose names cannot address a mapping key, or that index further than
// cfg.MaxListIndex past the end of a list, are skipped.
func ParseSubmission(entries []Entry, cfg Config) Submission {
	cfg = cfg.withDefaults()

	var (
		intentText *string
		order      []string
		values     = map[string][]any{}
	)
	for _, entry := range entries {
		if entry.Name == "" {
			continue
		}
		if entry.Name == cfg.IntentName {
			if text, ok := entry.Value.(string); ok && intentText == nil {
				intentText = &text
			}
			continue
		}
		if _, seen := values[entry.Name]; !seen {
			order = append(order, entry.Name)
		}
		values[entry.Name] = append(values[entry.Name], entry.Value)
	}

	payload := map[string]any{}
	fields := make([]string, 0, len(order))
	for _, name := range order {
		var value any
		if collected := values[name]; len(collected) == 1 {
			value = collected[0]
		} else {
			value = collected
		}
		next, err := fieldpath.SetString(payload, name, value, fieldpath.WithMaxGap(cfg.MaxListIndex))
		if err != nil {
			continue
		}
		payload = next
		fields = append(fields, name)
	}

	return Submission{
		Intent:  intentText,
		Payload: payload,
		Fields:  fields,
	}
}

// EntriesFromValues converts url.Values into entries with names in sorted
// order and repeated values kept in their original order.
func EntriesFromValues(values url.Values) []Entry {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []Entry
	for _, name := range names {
		for _, value := range values[name] {
			entries = append(entries, Entry{Name: name, Value: value})
		}
	}
	return entries
}

// EntriesFromRequest parses the request form, including multipart bodies, and
// returns its fields followed by its uploaded files.
func EntriesFromRequest(r *http.Request, maxMemory int64) ([]Entry, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	entries := EntriesFromValues(r.Form)
	if r.MultipartForm != nil {
		entries = append(entries, fileEntries(r.MultipartForm)...)
	}
	return entries, nil
}

func fileEntries(form *multipart.Form) []Entry {
	names := make([]string, 0, len(form.File))
	for name := range form.File {
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []Entry
	for _, name := range names {
		for _, header := range form.File[name] {
			entries = append(entries, Entry{Name: name, Value: header})
		}
	}
	return entries
}
