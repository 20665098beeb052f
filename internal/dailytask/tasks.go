// Package dailytask defines the rotating daily task catalog and decides
// whether a user's activity for the day satisfies a task.
package dailytask

import (
	"time"

	"github.com/shopspring/decimal"

	"refusal-tracker/internal/model"
)

// Kind is how a task's target is measured.
type Kind string

const (
	KindDaily    Kind = "daily"    // entries logged today
	KindAmount   Kind = "amount"   // reference amount saved today
	KindStreak   Kind = "streak"   // current streak in days
	KindCategory Kind = "category" // entries in one category today
	KindReferral Kind = "referral" // users referred so far
)

// InviteFriend is offered every day.
const InviteFriend = "invite_friend"

// Task is one catalog task.
type Task struct {
	Code          string         `json:"code"`
	NameEn        string         `json:"nameEn"`
	NameRu        string         `json:"nameRu"`
	DescriptionEn string         `json:"descriptionEn"`
	DescriptionRu string         `json:"descriptionRu"`
	Points        int64          `json:"points"`
	Kind          Kind           `json:"type"`
	Target        int64          `json:"target"`
	Category      model.Category `json:"category,omitempty"`
	Weekday       time.Weekday   `json:"-"`
	// PerEntry measures an amount task against the largest single entry.
	PerEntry bool `json:"perEntry,omitempty"`
}

// Tasks contains the catalog keyed by code.
var Tasks = map[string]Task{
	"monday_save_20": {
		Code: "monday_save_20", NameEn: "Monday Money Saver", NameRu: "Понедельничный Экономист",
		DescriptionEn: "Save at least $20 today", DescriptionRu: "Сэкономьте минимум $20 сегодня",
		Points: 15, Kind: KindAmount, Target: 20, Weekday: time.Monday,
	},
	"monday_3_entries": {
		Code: "monday_3_entries", NameEn: "Monday Triple", NameRu: "Понедельничная Тройка",
		DescriptionEn: "Make 3 refusal entries today", DescriptionRu: "Сделайте 3 записи об отказе сегодня",
		Points: 10, Kind: KindDaily, Target: 3, Weekday: time.Monday,
	},
	"tuesday_habits": {
		Code: "tuesday_habits", NameEn: "Tuesday Habit Breaker", NameRu: "Вторничный Борец с Привычками",
		DescriptionEn: "Refuse 2 habit-related purchases", DescriptionRu: "Откажитесь от 2 покупок, связанных с привычками",
		Points: 12, Kind: KindCategory, Target: 2, Category: model.CategoryHabits, Weekday: time.Tuesday,
	},
	"tuesday_early_bird": {
		Code: "tuesday_early_bird", NameEn: "Tuesday Early Bird", NameRu: "Вторничная Ранняя Пташка",
		DescriptionEn: "Make your first entry before 10 AM", DescriptionRu: "Сделайте первую запись до 10 утра",
		Points: 8, Kind: KindDaily, Target: 1, Weekday: time.Tuesday,
	},
	"wednesday_food": {
		Code: "wednesday_food", NameEn: "Wednesday Food Fighter", NameRu: "Средний Борец с Едой",
		DescriptionEn: "Refuse 3 food-related purchases", DescriptionRu: "Откажитесь от 3 покупок, связанных с едой",
		Points: 15, Kind: KindCategory, Target: 3, Category: model.CategoryFood, Weekday: time.Wednesday,
	},
	"wednesday_streak": {
		Code: "wednesday_streak", NameEn: "Wednesday Streak", NameRu: "Средняя Серия",
		DescriptionEn: "Maintain a 3-day saving streak", DescriptionRu: "Поддерживайте 3-дневную серию экономии",
		Points: 20, Kind: KindStreak, Target: 3, Weekday: time.Wednesday,
	},
	"thursday_drinks": {
		Code: "thursday_drinks", NameEn: "Thursday Thirst Quencher", NameRu: "Четверговый Утолитель Жажды",
		DescriptionEn: "Refuse 2 drink purchases", DescriptionRu: "Откажитесь от 2 покупок напитков",
		Points: 10, Kind: KindCategory, Target: 2, Category: model.CategoryDrinks, Weekday: time.Thursday,
	},
	"thursday_high_value": {
		Code: "thursday_high_value", NameEn: "Thursday High Roller", NameRu: "Четверговый Высокий Роллер",
		DescriptionEn: "Save at least $30 in one entry", DescriptionRu: "Сэкономьте минимум $30 в одной записи",
		Points: 18, Kind: KindAmount, Target: 30, Weekday: time.Thursday, PerEntry: true,
	},
	"friday_entertainment": {
		Code: "friday_entertainment", NameEn: "Friday Fun Fighter", NameRu: "Пятничный Борец с Развлечениями",
		DescriptionEn: "Refuse 2 entertainment purchases", DescriptionRu: "Откажитесь от 2 покупок развлечений",
		Points: 12, Kind: KindCategory, Target: 2, Category: model.CategoryEntertainment, Weekday: time.Friday,
	},
	"friday_weekend_prep": {
		Code: "friday_weekend_prep", NameEn: "Friday Weekend Prep", NameRu: "Пятничная Подготовка к Выходным",
		DescriptionEn: "Make 5 entries today", DescriptionRu: "Сделайте 5 записей сегодня",
		Points: 15, Kind: KindDaily, Target: 5, Weekday: time.Friday,
	},
	"saturday_shopping": {
		Code: "saturday_shopping", NameEn: "Saturday Shopping Stopper", NameRu: "Субботний Остановщик Покупок",
		DescriptionEn: "Refuse 3 shopping purchases", DescriptionRu: "Откажитесь от 3 покупок в магазинах",
		Points: 15, Kind: KindCategory, Target: 3, Category: model.CategoryShopping, Weekday: time.Saturday,
	},
	"saturday_big_save": {
		Code: "saturday_big_save", NameEn: "Saturday Big Saver", NameRu: "Субботний Большой Экономист",
		DescriptionEn: "Save at least $50 today", DescriptionRu: "Сэкономьте минимум $50 сегодня",
		Points: 25, Kind: KindAmount, Target: 50, Weekday: time.Saturday,
	},
	"sunday_reflection": {
		Code: "sunday_reflection", NameEn: "Sunday Reflection", NameRu: "Воскресное Размышление",
		DescriptionEn: "Make 4 entries and review your week", DescriptionRu: "Сделайте 4 записи и проанализируйте неделю",
		Points: 12, Kind: KindDaily, Target: 4, Weekday: time.Sunday,
	},
	"sunday_clean_slate": {
		Code: "sunday_clean_slate", NameEn: "Sunday Clean Slate", NameRu: "Воскресный Чистый Лист",
		DescriptionEn: "Complete all daily tasks this week", DescriptionRu: "Выполните все ежедневные задания на этой неделе",
		Points: 30, Kind: KindStreak, Target: 7, Weekday: time.Sunday,
	},
	InviteFriend: {
		Code: InviteFriend, NameEn: "Friend Inviter", NameRu: "Приглашатель Друзей",
		DescriptionEn: "Invite 1 friend to join the app", DescriptionRu: "Пригласите 1 друга присоединиться к приложению",
		Points: 20, Kind: KindReferral, Target: 1,
	},
}

// order is the display order of the catalog.
var order = []string{
	"monday_save_20", "monday_3_entries",
	"tuesday_habits", "tuesday_early_bird",
	"wednesday_food", "wednesday_streak",
	"thursday_drinks", "thursday_high_value",
	"friday_entertainment", "friday_weekend_prep",
	"saturday_shopping", "saturday_big_save",
	"sunday_reflection", "sunday_clean_slate",
	InviteFriend,
}

// All returns every task in display order.
func All() []Task {
	tasks := make([]Task, 0, len(order))
	for _, code := range order {
		if t, ok := Tasks[code]; ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// Get returns the task for code.
func Get(code string) (Task, bool) {
	t, ok := Tasks[code]
	return t, ok
}

// ForWeekday returns the day's two tasks followed by InviteFriend.
func ForWeekday(day time.Weekday) []Task {
	var tasks []Task
	for _, t := range All() {
		if t.Code != InviteFriend && t.Weekday == day {
			tasks = append(tasks, t)
		}
	}
	return append(tasks, Tasks[InviteFriend])
}

// Offered reports whether code is among the tasks for day.
func Offered(code string, day time.Weekday) bool {
	for _, t := range ForWeekday(day) {
		if t.Code == code {
			return true
		}
	}
	return false
}

// Stats is a user's activity as seen by the task predicates.
type Stats struct {
	TodayEntries   int
	TodayAmount    decimal.Decimal
	LargestEntry   decimal.Decimal
	Streak         int
	CategoryCounts map[model.Category]int
	Referrals      int
}

// NewStats aggregates today's entries.
func NewStats(today []model.Entry, streak, referrals int) Stats {
	s := Stats{
		TodayEntries:   len(today),
		TodayAmount:    decimal.Zero,
		LargestEntry:   decimal.Zero,
		Streak:         streak,
		CategoryCounts: make(map[model.Category]int),
		Referrals:      referrals,
	}
	for _, e := range today {
		s.TodayAmount = s.TodayAmount.Add(e.USDAmount)
		s.LargestEntry = decimal.Max(s.LargestEntry, e.USDAmount)
		s.CategoryCounts[e.Category]++
	}
	return s
}

// measure returns the value a task's target is compared against.
func (t Task) measure(s Stats) decimal.Decimal {
	switch t.Kind {
	case KindDaily:
		return decimal.NewFromInt(int64(s.TodayEntries))
	case KindAmount:
		if t.PerEntry {
			return s.LargestEntry
		}
		return s.TodayAmount
	case KindStreak:
		return decimal.NewFromInt(int64(s.Streak))
	case KindCategory:
		return decimal.NewFromInt(int64(s.CategoryCounts[t.Category]))
	case KindReferral:
		return decimal.NewFromInt(int64(s.Referrals))
	default:
		return decimal.Zero
	}
}

// Max is the progress value at which the task is complete.
func (t Task) Max() decimal.Decimal {
	if t.Target <= 0 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(t.Target)
}

// Progress returns the task's progress capped at Max.
func (t Task) Progress(s Stats) decimal.Decimal {
	return decimal.Min(t.measure(s), t.Max())
}

// Completed reports whether s meets the task's target.
func (t Task) Completed(s Stats) bool {
	return t.measure(s).GreaterThanOrEqual(t.Max())
}
