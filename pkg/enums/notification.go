package enums

import "fmt"

// NotificationCategory groups in-app notifications by the subsystem that raised them.
type NotificationCategory string

const (
	NotificationCategoryStockAlert NotificationCategory = "stock_alert"
	NotificationCategoryProduction NotificationCategory = "production"
)

// String implements fmt.Stringer.
func (n NotificationCategory) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationCategory.
func (n NotificationCategory) IsValid() bool {
	return n == NotificationCategoryStockAlert || n == NotificationCategoryProduction
}

// ParseNotificationCategory converts raw input into a NotificationCategory.
func ParseNotificationCategory(value string) (NotificationCategory, error) {
	switch NotificationCategory(value) {
	case NotificationCategoryStockAlert:
		return NotificationCategoryStockAlert, nil
	case NotificationCategoryProduction:
		return NotificationCategoryProduction, nil
	}
	return "", fmt.Errorf("invalid notification category %q", value)
}
