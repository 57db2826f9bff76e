package enums

// PublishOutcome distinguishes how far a product publish got.
type PublishOutcome string

const (
	// PublishOutcomeComplete means the product row and its image both persisted.
	PublishOutcomeComplete PublishOutcome = "complete"
	// PublishOutcomePartial means the product row persisted but the image did not.
	PublishOutcomePartial PublishOutcome = "partial"
)

// String implements fmt.Stringer.
func (p PublishOutcome) String() string {
	return string(p)
}
