package enums

type SwipeAction string

const (
	SwipeActionLike      SwipeAction = "LIKE"
	SwipeActionPass      SwipeAction = "PASS"
	SwipeActionSuperLike SwipeAction = "SUPER_LIKE"
)

// Positive reports whether the action expresses interest and can
// participate in mutual-match detection.
func (a SwipeAction) Positive() bool {
	return a == SwipeActionLike || a == SwipeActionSuperLike
}
