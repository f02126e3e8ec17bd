package submission

// NFTMetadata is the ERC-721 metadata document served for minted tokens.
type NFTMetadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Attributes  []NFTAttribute `json:"attributes"`
}

// NFTAttribute is a single trait in the metadata document.
type NFTAttribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Metadata builds the ERC-721 metadata document for a submission.
func (s *Submission) Metadata() NFTMetadata {
	return NFTMetadata{
		Name:        s.Title,
		Description: s.Description,
		Image:       s.ImageURL,
		Attributes: []NFTAttribute{
			{TraitType: "Activity Type", Value: string(s.ActivityType)},
			{TraitType: "Verified On", Value: s.CreatedAt.Format("2006-01-02")},
		},
	}
}
