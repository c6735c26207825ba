package model

import (
	"fmt"
	"strings"
)

// TastePrimary is the main taste impression of a shot.
type TastePrimary int

// Primary taste values. TasteNone means no feedback was given.
const (
	TasteNone TastePrimary = iota
	TasteSour
	TastePerfect
	TasteBitter
)

func (t TastePrimary) String() string {
	switch t {
	case TasteSour:
		return "sour"
	case TastePerfect:
		return "perfect"
	case TasteBitter:
		return "bitter"
	default:
		return ""
	}
}

// ParseTastePrimary parses a taste label; an empty string yields TasteNone.
func ParseTastePrimary(s string) (TastePrimary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return TasteNone, nil
	case "sour", "s":
		return TasteSour, nil
	case "perfect", "p":
		return TastePerfect, nil
	case "bitter", "b":
		return TasteBitter, nil
	}
	return TasteNone, fmt.Errorf("unknown taste %q (use sour, perfect or bitter)", s)
}

// TasteSecondary qualifies the strength of a primary taste.
type TasteSecondary int

// Strength values. StrengthNone means no qualifier.
const (
	StrengthNone TasteSecondary = iota
	StrengthWeak
	StrengthStrong
)

func (t TasteSecondary) String() string {
	switch t {
	case StrengthWeak:
		return "weak"
	case StrengthStrong:
		return "strong"
	default:
		return ""
	}
}

// ParseTasteSecondary parses a strength label; an empty string yields StrengthNone.
func ParseTasteSecondary(s string) (TasteSecondary, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return StrengthNone, nil
	case "weak", "w":
		return StrengthWeak, nil
	case "strong", "t":
		return StrengthStrong, nil
	}
	return StrengthNone, fmt.Errorf("unknown taste strength %q (use weak or strong)", s)
}
