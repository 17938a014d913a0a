package loader

import (
	"sort"

	"github.com/nathoo/adriftcore/engine/props"
	"github.com/nathoo/adriftcore/engine/taf"
)

// Action types that the finishing passes look at.
const actionChangeScore = 4

// finish adds the derived properties the runtime reads: the version, the
// maximum score, room group member lists, the ALR application order and
// embedded resource offsets.
func finish(store *props.Store, version taf.Version) error {
	if err := store.Put("I->s", int(version), "Version"); err != nil {
		return err
	}
	if err := store.Put("S->s", version.String(), "VersionString"); err != nil {
		return err
	}
	if err := store.Put("I->ss", maxScore(store), "Globals", "MaxScore"); err != nil {
		return err
	}
	if err := roomGroupMembers(store); err != nil {
		return err
	}
	if err := alrOrder(store); err != nil {
		return err
	}
	return resourceOffsets(store)
}

// maxScore sums every positive score change over all task actions.
func maxScore(store *props.Store) int {
	total := 0
	for task := 0; task < store.Count("Tasks"); task++ {
		for action := 0; action < store.Count("Tasks", task, "Actions"); action++ {
			if store.Int("Tasks", task, "Actions", action, "Type") != actionChangeScore {
				continue
			}
			if n := store.Int("Tasks", task, "Actions", action, "Var1"); n > 0 {
				total += n
			}
		}
	}
	return total
}

// roomGroupMembers writes RoomGroups/g/List2: the member count followed by
// the member rooms in ascending order.
func roomGroupMembers(store *props.Store) error {
	rooms := store.Count("Rooms")
	for g := 0; g < store.Count("RoomGroups"); g++ {
		var members []int
		for room := 0; room < rooms; room++ {
			if store.Bool("RoomGroups", g, "List", room) {
				members = append(members, room)
			}
		}
		// List2 doubles as the count leaf and the member array, so the
		// count goes under its own key.
		if err := store.Put("I->siss", len(members), "RoomGroups", g, "List2", "Count"); err != nil {
			return err
		}
		for i, room := range members {
			if err := store.Put("I->sisi", room, "RoomGroups", g, "Members", i); err != nil {
				return err
			}
		}
	}
	return nil
}

// alrOrder writes ALRs2/n/ALRIndex, the ALRs sorted by descending length
// of original text. Ties keep file order.
func alrOrder(store *props.Store) error {
	n := store.Count("ALRs")
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return len(store.String("ALRs", order[a], "Original")) >
			len(store.String("ALRs", order[b], "Original"))
	})
	for i, alr := range order {
		if err := store.Put("I->sis", alr, "ALRs2", i, "ALRIndex"); err != nil {
			return err
		}
	}
	return nil
}

// resourceOffsets assigns each embedded sound and graphic its offset in
// the data that follows the story. Resources are packed in the order they
// appear, a slot's sound before its graphic.
func resourceOffsets(store *props.Store) error {
	offset := 0
	assign := func(path ...any) error {
		if n := store.Int(extend(path, "SoundLen")...); n > 0 {
			if err := put(store, 'I', offset, extend(path, "SoundOffset")); err != nil {
				return err
			}
			offset += n
		}
		if n := store.Int(extend(path, "GraphicLen")...); n > 0 {
			if err := put(store, 'I', offset, extend(path, "GraphicOffset")); err != nil {
				return err
			}
			offset += n
		}
		return nil
	}

	for room := 0; room < store.Count("Rooms"); room++ {
		if err := assign("Rooms", room, "Res"); err != nil {
			return err
		}
		for alt := 0; alt < store.Count("Rooms", room, "Alts"); alt++ {
			if err := assign("Rooms", room, "Alts", alt, "Res1"); err != nil {
				return err
			}
			if err := assign("Rooms", room, "Alts", alt, "Res2"); err != nil {
				return err
			}
		}
	}
	if err := assign("Globals", "WinRes"); err != nil {
		return err
	}
	for _, section := range []struct {
		name  string
		slots int
	}{{"Objects", 2}, {"Tasks", 0}, {"Events", 5}, {"NPCs", 4}} {
		for i := 0; i < store.Count(section.name); i++ {
			if section.slots == 0 {
				if err := assign(section.name, i, "Res"); err != nil {
					return err
				}
				continue
			}
			for slot := 0; slot < section.slots; slot++ {
				if err := assign(section.name, i, "Res", slot); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
