package deck

import (
	"strings"

	"github.com/knowdeckapp/knowdeck/internal/domain"
)

// matchesFilter is the list-view predicate, shared verbatim by the
// filtered export: the trimmed search text must appear in the title as a
// case-sensitive substring, and the card must share at least one label
// with the selected set. An empty search or empty selection matches all.
func matchesFilter(c *domain.Card, searchText string, selectedLabelIDs []string) bool {
	search := strings.TrimSpace(searchText)
	if search != "" && !strings.Contains(c.Title, search) {
		return false
	}

	if len(selectedLabelIDs) == 0 {
		return true
	}
	for _, id := range selectedLabelIDs {
		if c.HasLabel(id) {
			return true
		}
	}
	return false
}
