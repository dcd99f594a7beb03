package fields

import (
	"fmt"
	"strings"
)

// Slot names one field of a FieldSet.
type Slot int

const (
	SlotFirstName Slot = iota
	SlotMiddleName
	SlotSurname
	SlotCategoryA
	SlotCategoryB
	SlotDate1
	SlotDate2
)

// AllSlots lists every slot in the fixed comparison order.
var AllSlots = []Slot{
	SlotFirstName,
	SlotMiddleName,
	SlotSurname,
	SlotCategoryA,
	SlotCategoryB,
	SlotDate1,
	SlotDate2,
}

var slotKeys = map[Slot]string{
	SlotFirstName:  "first_name",
	SlotMiddleName: "middle_name",
	SlotSurname:    "surname",
	SlotCategoryA:  "category_a",
	SlotCategoryB:  "category_b",
	SlotDate1:      "date1",
	SlotDate2:      "date2",
}

// String returns the snake_case key used in config files and CLI flags.
func (s Slot) String() string {
	if key, ok := slotKeys[s]; ok {
		return key
	}
	return fmt.Sprintf("slot(%d)", int(s))
}

// ParseSlot resolves a slot key such as "surname" or "date2".
func ParseSlot(value string) (Slot, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, "-", "_")
	for slot, key := range slotKeys {
		if key == value {
			return slot, nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", value)
}

// FieldSet holds the classified fields of one artifact. Empty means unknown.
type FieldSet struct {
	FirstName  string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	MiddleName string `json:"middle_name,omitempty" yaml:"middle_name,omitempty"`
	Surname    string `json:"surname,omitempty" yaml:"surname,omitempty"`
	CategoryA  string `json:"category_a,omitempty" yaml:"category_a,omitempty"`
	CategoryB  string `json:"category_b,omitempty" yaml:"category_b,omitempty"`
	Date1      string `json:"date1,omitempty" yaml:"date1,omitempty"`
	Date2      string `json:"date2,omitempty" yaml:"date2,omitempty"`
}

// Get returns the value stored in slot.
func (f FieldSet) Get(slot Slot) string {
	switch slot {
	case SlotFirstName:
		return f.FirstName
	case SlotMiddleName:
		return f.MiddleName
	case SlotSurname:
		return f.Surname
	case SlotCategoryA:
		return f.CategoryA
	case SlotCategoryB:
		return f.CategoryB
	case SlotDate1:
		return f.Date1
	case SlotDate2:
		return f.Date2
	default:
		return ""
	}
}

// Set stores value in slot after trimming surrounding whitespace.
func (f *FieldSet) Set(slot Slot, value string) {
	value = strings.TrimSpace(value)
	switch slot {
	case SlotFirstName:
		f.FirstName = value
	case SlotMiddleName:
		f.MiddleName = value
	case SlotSurname:
		f.Surname = value
	case SlotCategoryA:
		f.CategoryA = value
	case SlotCategoryB:
		f.CategoryB = value
	case SlotDate1:
		f.Date1 = value
	case SlotDate2:
		f.Date2 = value
	}
}

// IsEmpty reports whether no slot holds a value.
func (f FieldSet) IsEmpty() bool {
	for _, slot := range AllSlots {
		if f.Get(slot) != "" {
			return false
		}
	}
	return true
}
