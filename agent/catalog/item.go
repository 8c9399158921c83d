package catalog

// Item is one gear entry from the product catalog. Items are read-only:
// the store hands out a snapshot and nothing in the agent mutates it.
type Item struct {
	Name        string   `json:"ProductName"`
	Description string   `json:"Description"`
	Tags        []string `json:"Tags"`
	Category    string   `json:"Category,omitempty"`
}
