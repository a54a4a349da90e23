package assessment

import "fmt"

// Category 拉取题库时使用的分类
type Category string

const (
	CategoryParentGeneral  Category = "parent_general"
	CategoryParentFisio    Category = "parent_fisio"
	CategoryParentOkupasi  Category = "parent_okupasi"
	CategoryParentWicara   Category = "parent_wicara"
	CategoryParentPaedagog Category = "parent_paedagog"
	CategoryWicaraOral     Category = "wicara_oral"
	CategoryWicaraBahasa   Category = "wicara_bahasa"
)

// SubmissionType 提交与查询历史时使用的类型
type SubmissionType string

const (
	SubmitGeneral         SubmissionType = "umum_parent"
	SubmitFisio           SubmissionType = "fisio_parent"
	SubmitOkupasi         SubmissionType = "okupasi_parent"
	SubmitWicara          SubmissionType = "wicara_parent"
	SubmitPaedagog        SubmissionType = "paedagog_parent"
	SubmitTherapistWicara SubmissionType = "wicara"
)

type GroupingKind string

const (
	GroupByKey   GroupingKind = "key"
	GroupByRange GroupingKind = "range"
)

// Range 闭区间 [Min, Max] 的题目 id 段
type Range struct {
	Key   string `json:"key" mapstructure:"key"`
	Title string `json:"title" mapstructure:"title"`
	Min   int    `json:"min" mapstructure:"min"`
	Max   int    `json:"max" mapstructure:"max"`
}

func (r Range) Contains(id int) bool { return id >= r.Min && id <= r.Max }

// Profile 某个分类的装配方式
type Profile struct {
	Category       Category
	SubmissionType SubmissionType
	Policy         Policy
	Bootstrap      *GroupStub
	// ContextFields 随答案一起提交的会话级字段，未填写时发送 null
	ContextFields []string
	History       GroupingKind
	// HistoryRanges 按区间分组时使用的区间表名
	HistoryRanges string
	// Sections 分组内再按区间拆分小节：group_key -> 区间表名
	Sections map[string]string
	// LayoutHints 历史视图按分组题型给出展示布局
	LayoutHints bool
	// ReadOnly 仅用于历史展示，拒绝序列化
	ReadOnly bool
}

const (
	RangesParentGeneral = "parent_general"
	RangesTongue        = "tongue_eval"
)

// DefaultRanges 区间表，可被配置覆盖
func DefaultRanges() map[string][]Range {
	return map[string][]Range{
		RangesParentGeneral: {
			{Key: "riwayat_psikososial", Title: "Riwayat Psikososial", Min: 430, Max: 434},
			{Key: "kehamilan", Title: "Riwayat Kehamilan", Min: 435, Max: 442},
			{Key: "kelahiran", Title: "Riwayat Kelahiran", Min: 443, Max: 455},
			{Key: "setelah_kelahiran", Title: "Riwayat Setelah Kelahiran", Min: 456, Max: 468},
			{Key: "kesehatan", Title: "Riwayat Kesehatan", Min: 469, Max: 476},
			{Key: "pendidikan", Title: "Riwayat Pendidikan", Min: 477, Max: 485},
		},
		RangesTongue: {
			{Key: "istirahat", Title: "Lidah: Istirahat", Min: 135, Max: 139},
			{Key: "keluar", Title: "Lidah: Keluar", Min: 140, Max: 144},
			{Key: "masuk", Title: "Lidah: Masuk", Min: 145, Max: 148},
			{Key: "kanan", Title: "Lidah: Kanan", Min: 149, Max: 151},
			{Key: "kiri", Title: "Lidah: Kiri", Min: 152, Max: 154},
			{Key: "atas", Title: "Lidah: Atas", Min: 155, Max: 157},
			{Key: "bawah", Title: "Lidah: Bawah", Min: 158, Max: 160},
			{Key: "alternatif", Title: "Lidah: Alternatif", Min: 161, Max: 163},
		},
	}
}

var profiles = map[Category]Profile{
	CategoryParentGeneral: {
		Category:       CategoryParentGeneral,
		SubmissionType: SubmitGeneral,
		Policy:         generalPolicy{},
		Bootstrap:      &GroupStub{Key: "identitas", Title: "Identitas Anak & Orangtua"},
		ContextFields:  []string{"child_name", "child_birth_info"},
		History:        GroupByRange,
		HistoryRanges:  RangesParentGeneral,
	},
	CategoryParentFisio: {
		Category:       CategoryParentFisio,
		SubmissionType: SubmitFisio,
		Policy:         fisioPolicy{},
		History:        GroupByKey,
	},
	CategoryParentOkupasi: {
		Category:       CategoryParentOkupasi,
		SubmissionType: SubmitOkupasi,
		Policy:         okupasiPolicy{},
		History:        GroupByKey,
		LayoutHints:    true,
	},
	CategoryParentWicara: {
		Category:       CategoryParentWicara,
		SubmissionType: SubmitWicara,
		Policy:         wicaraPolicy{},
		History:        GroupByKey,
	},
	CategoryParentPaedagog: {
		Category:       CategoryParentPaedagog,
		SubmissionType: SubmitPaedagog,
		Policy:         paedagogPolicy{},
		History:        GroupByKey,
	},
	CategoryWicaraOral: {
		Category:       CategoryWicaraOral,
		SubmissionType: SubmitTherapistWicara,
		Policy:         therapistPolicy{},
		History:        GroupByKey,
		Sections:       map[string]string{"tongue_eval": RangesTongue},
	},
	CategoryWicaraBahasa: {
		Category:       CategoryWicaraBahasa,
		SubmissionType: SubmitTherapistWicara,
		Policy:         therapistPolicy{},
		History:        GroupByKey,
	},
}

func LookupProfile(c Category) (Profile, error) {
	p, ok := profiles[c]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownCategory, c)
	}
	return p, nil
}

// HistoryView 同一分类的只读副本
func (p Profile) HistoryView() Profile {
	p.ReadOnly = true
	return p
}

func Categories() []Category {
	return []Category{
		CategoryParentGeneral,
		CategoryParentFisio,
		CategoryParentOkupasi,
		CategoryParentWicara,
		CategoryParentPaedagog,
		CategoryWicaraOral,
		CategoryWicaraBahasa,
	}
}
