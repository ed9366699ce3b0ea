package prefs

import "strings"

const (
	KeyRuleFile   = "rulefile"
	KeyMusicMuted = "MuteManager.musicMuted"
	KeySoundMuted = "MuteManager.soundMuted"
)

// NormalizeName lowercases name and collapses every run of characters other
// than letters and digits into a single underscore.
func NormalizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

// CreditsKey is the key holding a variation's credit balance.
func CreditsKey(variation string) string {
	return NormalizeName(variation) + ".credits"
}

// HighscoreKey is the key holding a variation's highscore.
func HighscoreKey(variation string) string {
	return NormalizeName(variation) + ".highscore"
}
