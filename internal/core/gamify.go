package core

// XP awards per event.
const (
	xpExpenseAdded     = 1
	xpIncomeAdded      = 5
	xpNoSpendDay       = 10
	xpUnderBudgetMonth = 20
)

type (
	// Badge is an earned achievement record. Current logic never awards
	// badges beyond initialization; the slot exists for persistence
	// compatibility.
	Badge struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		EarnedAt string `json:"earnedAt,omitempty"`
	}

	// Challenge is an unused placeholder carried through persistence.
	Challenge struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Progress int    `json:"progress"`
	}

	// GamificationState evolves via events; XP is monotonically
	// non-decreasing and Level is always derived from XP, never set
	// independently.
	GamificationState struct {
		XP                int        `json:"xp"`
		Level             int        `json:"level"`
		NoSpendStreak     int        `json:"noSpendStreak"`
		UnderBudgetStreak int        `json:"underBudgetStreak"`
		Badges            []Badge    `json:"badges"`
		LastActivityDate  string     `json:"lastActivityDate,omitempty"`
		WeeklyChallenge   *Challenge `json:"weeklyChallenge,omitempty"`
	}
)

// NewGamificationState returns the initial state at level 1.
func NewGamificationState() GamificationState {
	return GamificationState{Level: 1, Badges: []Badge{}}
}

// LevelForXP maps experience points to a level. Level 1 starts at 0
// with a step of 100; each step grows by 50, so level 2 is reached at
// 100 xp, level 3 at 250, level 4 at 450, and so on.
func LevelForXP(xp int) int {
	level, threshold, step := 1, 0, 100
	for xp >= threshold+step {
		threshold += step
		step += 50
		level++
	}
	return level
}

// addXP awards points and rederives the level.
func (g GamificationState) addXP(points int) GamificationState {
	g.XP += points
	g.Level = LevelForXP(g.XP)
	return g
}

// ApplyTransactionAdded awards the manual-add XP: 1 for an expense, 5
// for income or a settlement.
func ApplyTransactionAdded(g GamificationState, ty TxType) GamificationState {
	if ty == Expense {
		return g.addXP(xpExpenseAdded)
	}
	return g.addXP(xpIncomeAdded)
}

// ApplyNoSpendCheck evaluates the no-spend streak for today: some
// transaction exists dated today, none of them is an expense, and the
// streak has not already been credited for today. At most one increment
// per day, guarded by LastActivityDate.
func ApplyNoSpendCheck(g GamificationState, txs []Transaction, today string) GamificationState {
	if g.LastActivityDate == today {
		return g
	}
	anyToday, expenseToday := false, false
	for _, t := range txs {
		if t.Date != today {
			continue
		}
		anyToday = true
		if t.Type == Expense {
			expenseToday = true
		}
	}
	if !anyToday || expenseToday {
		return g
	}
	g.NoSpendStreak++
	g.LastActivityDate = today
	return g.addXP(xpNoSpendDay)
}

// ApplyUnderBudgetCheck increments the under-budget streak whenever an
// overall budget is set and the month's spending is within it. This
// runs on every re-evaluation while the condition holds, not once per
// month transition, matching the historical behavior.
func ApplyUnderBudgetCheck(g GamificationState, totals MonthlyTotals, b Budgets) GamificationState {
	if b.Overall <= 0 || totals.Expense > b.Overall {
		return g
	}
	g.UnderBudgetStreak++
	return g.addXP(xpUnderBudgetMonth)
}
