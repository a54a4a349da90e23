package assessment

// Store 单个会话独占的答案仓库。只允许通过下面几个变更操作写入，
// 每次写入都是一次完整的槽位替换
type Store struct {
	slots map[int]Value
}

func NewStore() *Store {
	return &Store{slots: make(map[int]Value)}
}

// InitStore 按题库为每道题写入默认答案
func InitStore(schema *Schema) *Store {
	s := NewStore()
	for _, q := range schema.Questions() {
		if v := DefaultAnswer(q.Type); v != nil {
			s.slots[q.ID] = v
		}
	}
	return s
}

func (s *Store) Get(id int) (Value, bool) {
	v, ok := s.slots[id]
	return v, ok
}

// SetAnswer 直接覆盖；value 为 nil 时清空槽位
func (s *Store) SetAnswer(id int, value Value) {
	if value == nil {
		delete(s.slots, id)
		return
	}
	s.slots[id] = value
}

// ToggleMembership 当前值不是集合时按空集合处理
func (s *Store) ToggleMembership(id int, member string) {
	current, _ := s.slots[id].(Set)
	s.slots[id] = current.Toggle(member)
}

// SetCell 当前值不是表格时按空表处理
func (s *Store) SetCell(id int, row, value string) {
	current, _ := s.slots[id].(Table)
	s.slots[id] = current.WithCell(row, value)
}

func (s *Store) SetGridCell(id int, row, column, value string) {
	current, _ := s.slots[id].(Table)
	s.slots[id] = current.WithGridCell(row, column, value)
}

func (s *Store) Len() int { return len(s.slots) }

// IDs 按 id 升序
func (s *Store) IDs() []int { return sortedInts(s.slots) }

// Snapshot 导出为可直接 JSON 编码的映射
func (s *Store) Snapshot() map[int]any {
	out := make(map[int]any, len(s.slots))
	for id, v := range s.slots {
		out[id] = v.Wire()
	}
	return out
}
