package search

import "github.com/cloo-solutions/storelens/internal/domain"

const (
	mediumSizeThreshold = 100
	largeSizeThreshold  = 1000
)

// CategorizeSize buckets a byte count: <100 small, <1000 medium, else large
func CategorizeSize(size int) domain.SizeCategory {
	if size < mediumSizeThreshold {
		return domain.SizeSmall
	}
	if size < largeSizeThreshold {
		return domain.SizeMedium
	}
	return domain.SizeLarge
}
