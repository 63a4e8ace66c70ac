package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table owned by the service.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Currency{},
		&Account{},
		&Configuration{},
		&Sequence{},
		&Product{},
		&GiftCard{},
		&PaymentGateway{},
		&PaymentTransaction{},
		&Sale{},
		&SaleLine{},
		&Invoice{},
		&InvoiceLine{},
		&MailMessage{},
		&AuditLog{},
		&GiftCardStateHistory{},
	)
}
