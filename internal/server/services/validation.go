package services

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/common"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return common.ErrInvalidEmailFormat
	}
	return nil
}

// validatePassword accepts at least 8 ASCII letters and digits with at least
// one digit, one lowercase and one uppercase letter.
func validatePassword(password string) error {
	if len(password) < 8 {
		return common.ErrInvalidPasswordFormat
	}

	var digit, lower, upper bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		default:
			return common.ErrInvalidPasswordFormat
		}
	}

	if !digit || !lower || !upper {
		return common.ErrInvalidPasswordFormat
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
