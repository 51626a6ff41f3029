// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"regexp"
	"strings"
	"unicode"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// MaxUsernameLength is the longest accepted username, in characters.
const MaxUsernameLength = 150

var usernameRegex = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

// ValidUsername reports whether username consists only of letters, digits
// and @/./+/-/_ and fits MaxUsernameLength.
func ValidUsername(username string) bool {
	return len([]rune(username)) <= MaxUsernameLength && usernameRegex.MatchString(username)
}

// commonPasswords is a short deny list of passwords seen in every leak.
var commonPasswords = map[string]struct{}{
	"password":  {},
	"password1": {},
	"12345678":  {},
	"123456789": {},
	"qwertyui":  {},
	"qwerty123": {},
	"iloveyou":  {},
	"11111111":  {},
	"abcdefgh":  {},
	"letmein1":  {},
}

// PasswordProblems returns human-readable reasons why password is not
// acceptable for the given username. An empty result means it is fine.
func PasswordProblems(password, username string) []string {
	var problems []string

	if len([]rune(password)) < MinPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}
	if password != "" && strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		problems = append(problems, "This password is entirely numeric.")
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		problems = append(problems, "This password is too common.")
	}
	if username != "" && strings.EqualFold(password, username) {
		problems = append(problems, "The password is too similar to the username.")
	}
	return problems
}
