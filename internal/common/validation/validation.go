package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	MaxListTitleLength      = 100
	MaxGiftTitleLength      = 200
	MaxDescriptionLength    = 2000
	MaxURLLength            = 2000
	MaxClaimedByLength      = 100
	MaxClaimerMessageLength = 500

	MinTitleLength = 1
)

// Claimant names allow letters (any script), spaces, hyphens and apostrophes.
var claimedByRegex = regexp.MustCompile(`^[\p{L} '-]+$`)

// ValidateListTitle checks a list title.
func ValidateListTitle(title string) error {
	return validateTitle(title, MaxListTitleLength)
}

// ValidateGiftTitle checks a gift title.
func ValidateGiftTitle(title string) error {
	return validateTitle(title, MaxGiftTitleLength)
}

func validateTitle(title string, max int) error {
	title = strings.TrimSpace(title)
	if len(title) < MinTitleLength {
		return fmt.Errorf("title cannot be empty")
	}
	if len(title) > max {
		return fmt.Errorf("title cannot exceed %d characters", max)
	}
	return nil
}

// ValidateDescription checks a gift description; empty is allowed.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("description cannot exceed %d characters", MaxDescriptionLength)
	}
	return nil
}

// ValidateGiftURL checks an optional gift link; empty is allowed, otherwise
// it must be an absolute http(s) URL.
func ValidateGiftURL(raw string) error {
	if raw == "" {
		return nil
	}
	if len(raw) > MaxURLLength {
		return fmt.Errorf("url cannot exceed %d characters", MaxURLLength)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("url is not valid: %v", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url must be absolute with http or https scheme")
	}
	return nil
}

// ValidateClaimedBy checks a claimant display name.
func ValidateClaimedBy(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("claimant name cannot be empty")
	}
	if len(name) > MaxClaimedByLength {
		return fmt.Errorf("claimant name cannot exceed %d characters", MaxClaimedByLength)
	}
	if !claimedByRegex.MatchString(name) {
		return fmt.Errorf("claimant name may only contain letters, spaces, hyphens and apostrophes")
	}
	return nil
}

// ValidateClaimerMessage checks an optional message left by the claimant.
func ValidateClaimerMessage(message string) error {
	if len(message) > MaxClaimerMessageLength {
		return fmt.Errorf("message cannot exceed %d characters", MaxClaimerMessageLength)
	}
	return nil
}

// ValidateSortOrder checks a gift sort order value.
func ValidateSortOrder(sortOrder int) error {
	if sortOrder < 0 {
		return fmt.Errorf("sort order cannot be negative")
	}
	return nil
}
