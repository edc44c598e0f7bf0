package scrape

import (
	"strings"
	"time"

	"github.com/Hemanthreddy410/job-scraping-tool/internal/domain"
	"github.com/Hemanthreddy410/job-scraping-tool/internal/scrape/util"
)

// DefaultDedupeWindow bounds how far apart two posted dates may sit
// while still describing the same cross-posted job. Cross-board
// reposts drift by a day or two; 72h covers that without merging
// genuine reposts months later.
const DefaultDedupeWindow = 72 * time.Hour

// Dedupe collapses postings that describe the same job and reports how
// many were folded away. Two postings match when their URL keys are
// equal, or when company, title, and location agree case-insensitively
// and their posted dates sit within window of each other (dates both
// absent also agree; one absent does not).
//
// Groups keep the position of their first member, so output order is
// first-seen order. Within a group the survivor is chosen by better.
func Dedupe(jobs []domain.Job, window time.Duration) ([]domain.Job, int) {
	if window <= 0 {
		window = DefaultDedupeWindow
	}

	out := make([]domain.Job, 0, len(jobs))
	byURL := map[string]int{}      // url key -> group slot
	byMirror := map[string][]int{} // company|title|location -> group slots
	dupes := 0

	for _, j := range jobs {
		urlKey := util.URLKey(j.URL)
		mKey := mirrorKey(j)

		slot := -1
		if i, ok := byURL[urlKey]; ok {
			slot = i
		} else {
			for _, i := range byMirror[mKey] {
				if datesWithin(out[i].PostedAt, j.PostedAt, window) {
					slot = i
					break
				}
			}
		}

		if slot < 0 {
			out = append(out, j)
			i := len(out) - 1
			byURL[urlKey] = i
			byMirror[mKey] = append(byMirror[mKey], i)
			continue
		}

		dupes++
		if better(j, out[slot]) {
			out[slot] = j
		}

		// register the duplicate's identities too, so a third copy
		// matching either side still lands in this group
		if _, ok := byURL[urlKey]; !ok {
			byURL[urlKey] = slot
		}
		if !containsSlot(byMirror[mKey], slot) {
			byMirror[mKey] = append(byMirror[mKey], slot)
		}
	}

	return out, dupes
}

// better decides whether a later duplicate displaces the survivor: a
// described posting beats a bare one, then the earlier posted date
// wins, then the survivor stays.
func better(candidate, incumbent domain.Job) bool {
	cHas, iHas := candidate.Description != "", incumbent.Description != ""
	if cHas != iHas {
		return cHas
	}
	if candidate.PostedAt != nil && incumbent.PostedAt != nil {
		return candidate.PostedAt.Before(*incumbent.PostedAt)
	}
	return false
}

func mirrorKey(j domain.Job) string {
	return strings.ToLower(util.CleanText(j.Company)) + "|" +
		strings.ToLower(util.CleanText(j.Title)) + "|" +
		strings.ToLower(util.CleanText(j.Location))
}

func datesWithin(a, b *time.Time, window time.Duration) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	d := a.Sub(*b)
	if d < 0 {
		d = -d
	}
	return d <= window
}

func containsSlot(xs []int, want int) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}
