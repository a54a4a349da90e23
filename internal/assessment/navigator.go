package assessment

// Action 当前步骤“前进”按钮的含义
type Action string

const (
	ActionNext   Action = "next"
	ActionSubmit Action = "submit"
)

// Position 导航位置，current_index 从 0 开始
type Position struct {
	CurrentIndex int    `json:"current_index"`
	Total        int    `json:"total"`
	Key          string `json:"key"`
	Forward      Action `json:"forward"`
	CanGoBack    bool   `json:"can_go_back"`
}

// Navigator 在有序分组之间移动。越界操作直接忽略
type Navigator struct {
	keys  []string
	index int
}

func NewNavigator(keys []string) *Navigator {
	return &Navigator{keys: append([]string(nil), keys...)}
}

func (n *Navigator) Current() string {
	if len(n.keys) == 0 {
		return ""
	}
	return n.keys[n.index]
}

func (n *Navigator) Index() int { return n.index }

func (n *Navigator) Total() int { return len(n.keys) }

func (n *Navigator) IsFirst() bool { return n.index == 0 }

func (n *Navigator) IsLast() bool { return len(n.keys) == 0 || n.index == len(n.keys)-1 }

// Next 在最后一步时返回 false
func (n *Navigator) Next() bool {
	if n.IsLast() {
		return false
	}
	n.index++
	return true
}

func (n *Navigator) Prev() bool {
	if n.IsFirst() {
		return false
	}
	n.index--
	return true
}

// JumpTo 未知 key 忽略
func (n *Navigator) JumpTo(key string) bool {
	for i, k := range n.keys {
		if k == key {
			n.index = i
			return true
		}
	}
	return false
}

func (n *Navigator) Forward() Action {
	if n.IsLast() {
		return ActionSubmit
	}
	return ActionNext
}

func (n *Navigator) Position() Position {
	return Position{
		CurrentIndex: n.index,
		Total:        len(n.keys),
		Key:          n.Current(),
		Forward:      n.Forward(),
		CanGoBack:    !n.IsFirst(),
	}
}
