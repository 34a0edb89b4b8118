package withdrawal

import "regexp"

// Destination addresses follow the payment network's grammar: legacy base58
// (P2PKH/P2SH) or bech32. Checksum verification is the network's job; this
// gate only rejects obviously malformed input before any funds are reserved.
var (
	base58AddressRe = regexp.MustCompile(`^[13][1-9A-HJ-NP-Za-km-z]{25,34}$`)
	bech32AddressRe = regexp.MustCompile(`^(bc1|tb1)[02-9ac-hj-np-z]{11,87}$`)
)

func ValidAddress(addr string) bool {
	return base58AddressRe.MatchString(addr) || bech32AddressRe.MatchString(addr)
}
