package tree

// CollectIDs indexes every id reachable from root by kind, including
// root itself as a folder. It is the same walk Validate does while
// building its seen set, pulled out for callers that only need an
// existence check and not cycle/parent validation.
func CollectIDs(root *Folder) map[Kind]map[string]bool {
	ids := map[Kind]map[string]bool{
		KindFolder:   {root.ID(): true},
		KindBookmark: {},
	}
	var walk func(f *Folder)
	walk = func(f *Folder) {
		for _, c := range f.Children() {
			ids[c.Kind()][c.ID()] = true
			if cf, ok := c.(*Folder); ok {
				walk(cf)
			}
		}
	}
	walk(root)
	return ids
}
