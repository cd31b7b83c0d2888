package service

import (
	"crypto/rand"
	"math/big"
)

// Word pool for attention challenges. Common words keep the prompt trivial
// to type for anyone actually watching.
var challengeWords = []string{
	"apple", "river", "stone", "cloud", "tiger", "maple", "candle", "garden",
	"planet", "silver", "window", "basket", "meadow", "socket", "ribbon", "magnet",
	"copper", "lantern", "pebble", "violet", "harbor", "saddle", "timber", "marble",
	"falcon", "cradle", "thunder", "bronze", "willow", "summit", "canyon", "ember",
	"glacier", "anchor", "compass", "prairie", "orchard", "turnip", "walnut", "breeze",
}

// randomChallengeWord picks a challenge word using crypto randomness so the
// prompt cannot be predicted by a script
func randomChallengeWord() (string, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(challengeWords))))
	if err != nil {
		return "", err
	}
	return challengeWords[num.Int64()], nil
}
