package chat

import "context"

// LoadSidebarOpen reads the sidebar preference. It defaults to open when
// nothing usable is stored.
func LoadSidebarOpen(ctx context.Context, kv KeyValue) bool {
	v, err := kv.GetItem(ctx, SidebarKey)
	if err != nil {
		return true
	}
	switch v {
	case "0":
		return false
	default:
		return true
	}
}

// SaveSidebarOpen stores the sidebar preference as "1" or "0".
func SaveSidebarOpen(ctx context.Context, kv KeyValue, open bool) error {
	v := "0"
	if open {
		v = "1"
	}
	return kv.SetItem(ctx, SidebarKey, v)
}
