package main

// touchContacts numbers the touch sequences currently on the screen. Ids
// start after the mouse contact and are handed out again once every finger
// has lifted.
type touchContacts struct {
	ids  map[uintptr]int
	next int
}

func (t *touchContacts) begin(seq uintptr) int {
	if t.ids == nil {
		t.ids = make(map[uintptr]int)
	}
	if len(t.ids) == 0 {
		t.next = mouse + 1
	}
	id := t.next
	t.next++
	t.ids[seq] = id
	return id
}

func (t *touchContacts) id(seq uintptr) (int, bool) {
	id, ok := t.ids[seq]
	return id, ok
}

func (t *touchContacts) end(seq uintptr) (int, bool) {
	id, ok := t.ids[seq]
	delete(t.ids, seq)
	return id, ok
}
