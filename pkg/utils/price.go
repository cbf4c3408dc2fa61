package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var numericPattern = regexp.MustCompile(`[\d.]+`)

// ParsePrice converts a display price such as "$1,299.00" to float64.
// Unparsable input yields 0.
func ParsePrice(priceStr string) float64 {
	if priceStr == "" {
		return 0
	}

	cleanPrice := strings.ReplaceAll(priceStr, "$", "")
	cleanPrice = strings.ReplaceAll(cleanPrice, ",", "")
	cleanPrice = strings.TrimSpace(cleanPrice)

	match := numericPattern.FindString(cleanPrice)
	if match == "" {
		return 0
	}

	price, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}

	return price
}

// ParseRating extracts the leading number of a rating text
// (e.g. "4.5 out of 5 stars" -> 4.5). ok is false when no number is present.
func ParseRating(ratingStr string) (float64, bool) {
	if ratingStr == "" {
		return 0, false
	}

	match := numericPattern.FindString(ratingStr)
	if match == "" {
		return 0, false
	}

	rating, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}

	return rating, true
}

// ParseOptionalFloat parses a numeric form field. Blank or malformed text
// returns nil, meaning "not set".
func ParseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParseCoordinate parses a latitude or longitude field. Malformed text
// returns NaN.
func ParseCoordinate(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
