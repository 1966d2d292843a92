package menu

// Item is one sidebar list. Its id doubles as the board id of the list's
// kanban board.
type Item struct {
	ID       uint64 `json:"id" gorm:"primaryKey"`
	ItemName string `json:"item_name" gorm:"not null"`
	UserID   string `json:"user_id" gorm:"not null;index"`
	Order    int    `json:"order" gorm:"column:order;not null;default:0"`
}

func (Item) TableName() string {
	return "category_todo"
}

type ItemOrder struct {
	ID    uint64
	Order int
}

type ItemView struct {
	Item
	Slug string `json:"slug"`
}

type MenuResponse struct {
	Items  []ItemView `json:"items"`
	Synced bool       `json:"synced"`
}

type CreateItemRequest struct {
	ItemName string `json:"item_name" binding:"required"`
}

type ReorderRequest struct {
	SourceIndex      int `json:"source_index"`
	DestinationIndex int `json:"destination_index"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func newViews(items []Item) []ItemView {
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, ItemView{Item: item, Slug: Slugify(item.ItemName)})
	}
	return views
}
