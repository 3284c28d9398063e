package service

// Viewer is the identity an operation runs on behalf of. The zero value is anonymous.
type Viewer struct {
	ID      uint
	IsStaff bool
}

func (v Viewer) Authenticated() bool {
	return v.ID != 0
}

// CanModify reports whether the viewer may change a resource owned by authorID.
// Staff bypass ownership.
func (v Viewer) CanModify(authorID uint) bool {
	if !v.Authenticated() {
		return false
	}
	return v.IsStaff || v.ID == authorID
}
