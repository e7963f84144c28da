package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// ListManager shows a list of items with add and remove buttons. The add
// button hands control to OnAdd, which is expected to collect input and
// call AddItem.
type ListManager struct {
	list        *widget.List
	removeBtn   *widget.Button
	data        []string
	selectedIdx int
	onAdd       func()
	onRemove    func(int)
	onChange    func()
	renderItem  func(int) string
}

// ListManagerConfig configures the list manager
type ListManagerConfig struct {
	RenderItem func(int) string // Renders a data item as string for display
	OnAdd      func()           // Called when the add button is pressed
	OnRemove   func(int)        // Called before an item is removed
	OnChange   func()           // Called when list changes
}

// NewListManager creates a new list manager component
func NewListManager(data []string, config ListManagerConfig) (*ListManager, *fyne.Container) {
	lm := &ListManager{
		data:        data,
		selectedIdx: -1,
		onAdd:       config.OnAdd,
		onRemove:    config.OnRemove,
		onChange:    config.OnChange,
		renderItem:  config.RenderItem,
	}

	lm.list = widget.NewList(
		func() int {
			return len(lm.data)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("template")
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if i < len(lm.data) {
				text := lm.data[i]
				if lm.renderItem != nil {
					text = lm.renderItem(i)
				}
				label.SetText(text)
			}
		})

	lm.list.OnSelected = func(id widget.ListItemID) {
		lm.selectedIdx = id
		lm.removeBtn.Enable()
	}
	lm.list.OnUnselected = func(widget.ListItemID) {
		lm.selectedIdx = -1
		lm.removeBtn.Disable()
	}

	addBtn := widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() {
		if lm.onAdd != nil {
			lm.onAdd()
		}
	})
	lm.removeBtn = widget.NewButtonWithIcon("", theme.ContentRemoveIcon(), lm.RemoveSelected)
	lm.removeBtn.Disable()

	// Wrap list in scroll with border
	listScroll := container.NewScroll(lm.list)
	listScroll.SetMinSize(fyne.NewSize(0, 150))

	listWithBorder := container.NewBorder(
		widget.NewSeparator(),
		widget.NewSeparator(),
		widget.NewSeparator(),
		widget.NewSeparator(),
		listScroll,
	)

	listContainer := container.NewVBox(listWithBorder, container.NewHBox(addBtn, lm.removeBtn))

	return lm, listContainer
}

// Refresh refreshes the list display
func (lm *ListManager) Refresh() {
	lm.list.Refresh()
}

// GetData returns the current data
func (lm *ListManager) GetData() []string {
	return lm.data
}

// SetData updates the data and refreshes
func (lm *ListManager) SetData(data []string) {
	lm.data = data
	lm.list.UnselectAll()
	lm.list.Refresh()
}

// Select selects the item at index i
func (lm *ListManager) Select(i int) {
	lm.list.Select(i)
}

// AddItem adds an item to the list
func (lm *ListManager) AddItem(item string) {
	lm.data = append(lm.data, item)
	lm.list.Refresh()
	if lm.onChange != nil {
		lm.onChange()
	}
}

// RemoveSelected removes the currently selected item
func (lm *ListManager) RemoveSelected() {
	if lm.selectedIdx < 0 || lm.selectedIdx >= len(lm.data) {
		return
	}

	idx := lm.selectedIdx
	if lm.onRemove != nil {
		lm.onRemove(idx)
	}
	lm.data = append(lm.data[:idx], lm.data[idx+1:]...)
	lm.list.UnselectAll()
	lm.selectedIdx = -1
	lm.removeBtn.Disable()
	lm.list.Refresh()
	if lm.onChange != nil {
		lm.onChange()
	}
}
