package privacy

// Anonymize strips every owner-identifying field from a stats record while
// keeping the behavioral and statistical ones. The output shape is the same
// regardless of which fields were set.
func Anonymize(s ResourceStats) ResourceStats {
	s.ResourceID = 0
	s.OwnerAccountID = 0
	s.ChainAddress = ""
	s.Label = ""
	return s
}
