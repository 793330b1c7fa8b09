// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
// - base.go: Base persistence model
// - sales_channel.go: Sales channels, their POS settings and channel types
// - product.go: Products and their visibility in sales channels
// - pos.go: Inventory snapshots, synchronisation runs and run logs
// - checkout.go: Payment and shipping methods touched by the plugin lifecycle
package models
