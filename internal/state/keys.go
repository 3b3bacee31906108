package state

// Loading keys. Per-entity actions append the entity id so that concurrent
// actions on different entities are tracked separately.
const (
	KeyFetchInitialData = "fetchInitialData"
	KeyAddList          = "addList"
	KeySetMonthlyBudget = "setMonthlyBudget"
	KeySignOut          = "signOut"
)

func KeyUpdateList(listID string) string         { return "updateList-" + listID }
func KeyDeleteList(listID string) string         { return "deleteList-" + listID }
func KeyDuplicateList(listID string) string      { return "duplicateList-" + listID }
func KeyAddItem(listID string) string            { return "addItem-" + listID }
func KeyUpdateItem(itemID string) string         { return "updateItem-" + itemID }
func KeyRemoveItem(itemID string) string         { return "removeItem-" + itemID }
func KeyUpdateItemOrder(listID string) string    { return "updateItemOrder-" + listID }
func KeyRecordPriceHistory(listID string) string { return "recordPriceHistory-" + listID }
