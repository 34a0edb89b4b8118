package withdrawal

import "testing"

func TestValidAddress(t *testing.T) {
	valid := []string{
		"1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2",
		"3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy",
		"bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4",
		"tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx",
	}
	for _, a := range valid {
		if !ValidAddress(a) {
			t.Errorf("ValidAddress(%q) = false, want true", a)
		}
	}

	invalid := []string{
		"",
		"not-an-address",
		"0BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2",  // bad prefix
		"1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN0",  // 0 is not base58
		"bc1qw508d6qejxtdg4y5r3zarvary0c5xb",   // b is not bech32
		"1Short",
	}
	for _, a := range invalid {
		if ValidAddress(a) {
			t.Errorf("ValidAddress(%q) = true, want false", a)
		}
	}
}
