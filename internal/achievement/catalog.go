// Package achievement holds the achievement catalog and the predicate registry
// that decides which achievements a user currently satisfies.
package achievement

import "refusal-tracker/internal/model"

// Achievement codes. Codes are persisted and must not change.
const (
	CodeCoffeeBreaker   = "coffee_breaker"
	CodeSugarFree       = "sugar_free"
	CodeSmokeOut        = "smoke_out"
	CodeBudgetNinja     = "budget_ninja"
	CodeMomentum        = "momentum"
	CodeRefHero         = "ref_hero"
	CodeConsistencyKing = "consistency_king"
	CodeIronWill        = "iron_will"
	CodeReasonSeeker    = "reason_seeker"
	CodeSelfAware       = "self_aware"
	CodeHealthWarrior   = "health_warrior"
	CodeMoneyMaster     = "money_master"
	CodeHabitBreaker    = "habit_breaker"
	CodeTimeLord        = "time_lord"
	CodeMinimalist      = "minimalist"
	CodeWisdomKeeper    = "wisdom_keeper"
)

// Catalog returns the achievements seeded into storage, in display order.
func Catalog() []model.Achievement {
	return []model.Achievement{
		{Code: CodeCoffeeBreaker, NameEn: "Coffee Breaker", NameRu: "Кофейный Отказник", DescriptionEn: "Refused your first coffee", DescriptionRu: "Отказался от первого кофе", Icon: "☕"},
		{Code: CodeSugarFree, NameEn: "Sugar Free", NameRu: "Без Сахара", DescriptionEn: "7 days without soda", DescriptionRu: "7 дней без газировки", Icon: "🥤"},
		{Code: CodeSmokeOut, NameEn: "Smoke Out", NameRu: "Бросил Курить", DescriptionEn: "14 day streak", DescriptionRu: "Стрик 14 дней", Icon: "🚬"},
		{Code: CodeBudgetNinja, NameEn: "Budget Ninja", NameRu: "Бюджетный Ниндзя", DescriptionEn: "Saved $40+", DescriptionRu: "Накоплено $40+", Icon: "🥷"},
		{Code: CodeMomentum, NameEn: "Momentum", NameRu: "Импульс", DescriptionEn: "21 day streak", DescriptionRu: "Стрик 21 день", Icon: "⚡"},
		{Code: CodeRefHero, NameEn: "Referral Hero", NameRu: "Герой Рефералов", DescriptionEn: "Invite 3 friends", DescriptionRu: "Пригласите 3 друзей", Icon: "🦸"},
		{Code: CodeConsistencyKing, NameEn: "Consistency King", NameRu: "Король Постоянства", DescriptionEn: "60 day streak", DescriptionRu: "Стрик 60 дней", Icon: "👑"},
		{Code: CodeIronWill, NameEn: "Iron Will", NameRu: "Железная Воля", DescriptionEn: "30 days without missing", DescriptionRu: "30 дней без пропусков", Icon: "🛡️"},
		{Code: CodeReasonSeeker, NameEn: "Reason Seeker", NameRu: "Искатель Причин", DescriptionEn: "Added your first Why tag", DescriptionRu: "Добавил первую метку Почему", Icon: "🤔"},
		{Code: CodeSelfAware, NameEn: "Self Aware", NameRu: "Самоосознанный", DescriptionEn: "Tagged 5 categories with reasons", DescriptionRu: "Отметил 5 категорий причинами", Icon: "🧠"},
		{Code: CodeHealthWarrior, NameEn: "Health Warrior", NameRu: "Воин Здоровья", DescriptionEn: "Tagged 3+ items as harmful or unhealthy", DescriptionRu: "Отметил 3+ вещи как вредные или нездоровые", Icon: "💪"},
		{Code: CodeMoneyMaster, NameEn: "Money Master", NameRu: "Мастер Денег", DescriptionEn: "Tagged 3+ items as expensive or wasteful", DescriptionRu: "Отметил 3+ вещи как дорогие или расточительные", Icon: "💎"},
		{Code: CodeHabitBreaker, NameEn: "Habit Breaker", NameRu: "Ломатель Привычек", DescriptionEn: "Tagged 3+ items as bad habits or addictive", DescriptionRu: "Отметил 3+ вещи как плохие привычки", Icon: "⛓️"},
		{Code: CodeTimeLord, NameEn: "Time Lord", NameRu: "Властелин Времени", DescriptionEn: "Tagged 3+ items as time wasting", DescriptionRu: "Отметил 3+ вещи как трата времени", Icon: "⏳"},
		{Code: CodeMinimalist, NameEn: "Minimalist", NameRu: "Минималист", DescriptionEn: "Tagged 3+ items as unnecessary or useless", DescriptionRu: "Отметил 3+ вещи как ненужные", Icon: "🎯"},
		{Code: CodeWisdomKeeper, NameEn: "Wisdom Keeper", NameRu: "Хранитель Мудрости", DescriptionEn: "Added 10+ Why tags across categories", DescriptionRu: "Добавил 10+ меток Почему", Icon: "📚"},
	}
}
