package validate

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[A-Za-z0-9 _'\\-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reCond  = regexp.MustCompile(`^(FIRST_HAND|SECOND_HAND)$`)
	reSlug  = regexp.MustCompile(`^[a-z0-9-]{1,40}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 50 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// ID validates a product or purchase identifier.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Category validates a category slug; "all" is the no-filter sentinel.
func Category(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "all" {
		return "all", true
	}
	return s, reSlug.MatchString(s)
}

// Condition validates allowed condition enums.
func Condition(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reCond.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 50 {
		return "", false
	}
	return s, true
}

// Password enforces a length window only; the seed directory decides whether
// the credential matches. 72 is the bcrypt input ceiling.
func Password(s string) bool {
	l := len(s)
	return l >= 6 && l <= 72
}

// Price accepts any non-negative amount.
func Price(v float64) bool { return v >= 0 }

// Qty clamps a requested quantity to a sane window.
func Qty(n int) int {
	if n > 50 {
		return 50
	}
	return n
}
