package services

// DefaultPlatformFeeBasisPoints is 5%.
const DefaultPlatformFeeBasisPoints = 500

// TotalCost returns the base rental plus the platform fee, rounded half up, in minor units.
func TotalCost(pricePerHour int64, hours int, feeBasisPoints int64) int64 {
	base := pricePerHour * int64(hours)
	fee := (base*feeBasisPoints + 5000) / 10000
	return base + fee
}
