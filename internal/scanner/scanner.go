// Package scanner finds contact details (e-mail addresses and phone numbers)
// in free text and in storage record values.
package scanner

import (
	"regexp"

	"github.com/cloo-solutions/storelens/internal/domain"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9._-]+`)
	phonePattern = regexp.MustCompile(`\+?(\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// Contacts holds the distinct addresses and numbers found, in discovery order
type Contacts struct {
	Emails []string `json:"emails"`
	Phones []string `json:"phones"`
}

// Empty reports whether nothing was found
func (c Contacts) Empty() bool {
	return len(c.Emails) == 0 && len(c.Phones) == 0
}

// ScanContacts scans text for e-mail addresses and phone numbers
func ScanContacts(text string) Contacts {
	c := newCollector()
	c.scan(text)
	return c.Contacts
}

// ScanRecords scans every record value. Results are deduplicated across
// records and keep the order of the first occurrence.
func ScanRecords(records []domain.StorageRecord) Contacts {
	c := newCollector()
	for _, r := range records {
		c.scan(r.Value)
	}
	return c.Contacts
}

type collector struct {
	Contacts
	seenEmails map[string]struct{}
	seenPhones map[string]struct{}
}

func newCollector() *collector {
	return &collector{
		Contacts:   Contacts{Emails: []string{}, Phones: []string{}},
		seenEmails: make(map[string]struct{}),
		seenPhones: make(map[string]struct{}),
	}
}

func (c *collector) scan(text string) {
	for _, m := range emailPattern.FindAllString(text, -1) {
		if _, ok := c.seenEmails[m]; !ok {
			c.seenEmails[m] = struct{}{}
			c.Emails = append(c.Emails, m)
		}
	}
	for _, m := range phonePattern.FindAllString(text, -1) {
		if _, ok := c.seenPhones[m]; !ok {
			c.seenPhones[m] = struct{}{}
			c.Phones = append(c.Phones, m)
		}
	}
}
