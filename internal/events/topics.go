package events

// Topic constants for domain events emitted by the storefront.
const (
	TopicCartItemAdded = "cart.item_added"
	TopicCartUpdated   = "cart.updated"
	TopicCartCleared   = "cart.cleared"
	TopicOrderPlaced   = "order.placed"
)
