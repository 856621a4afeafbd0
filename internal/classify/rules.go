package classify

// CategoryIncome marks inflow lines; every other category describes
// spending. Callers use it to infer direction when a statement line
// carries no explicit type.
const CategoryIncome = "Income"

// CategoryRule maps a spending category to its match keywords. Rules
// live in an ordered slice, not a map: classification is first-match-wins
// in declaration order, so ordering sensitivity is part of the contract.
type CategoryRule struct {
	Category string
	Keywords []string
}

// DefaultRules is the canonical rule table. Specific categories come
// first, generic ones last; within that order the first keyword hit
// wins, so a line like "UBEREATS" lands in Transportation via the UBER
// substring before Dining's UBEREATS keyword is ever consulted.
// Keywords of three characters or fewer are matched on word boundaries
// to avoid false positives (e.g. ETF inside NETFLIX).
func DefaultRules() []CategoryRule {
	return []CategoryRule{
		{Category: "Subscriptions", Keywords: []string{
			"NETFLIX", "HULU", "DISNEY+", "HBO", "PRIME VIDEO",
			"SPOTIFY", "APPLE MUSIC", "TIDAL",
			"DROPBOX", "ICLOUD", "GOOGLE ONE",
			"ADOBE", "JETBRAINS", "GITHUB", "NOTION",
			"MEMBERSHIP", "SUBSCRIPTION", "ANNUAL FEE",
		}},
		{Category: "Fitness & Wellness", Keywords: []string{
			"GYM", "CLASSPASS", "YOGA", "PILATES", "PERSONAL TRAINER",
		}},
		{Category: "Education", Keywords: []string{
			"UDEMY", "COURSERA", "TUITION", "UNIVERSITY", "COLLEGE", "COURSE", "BOOTCAMP",
		}},
		{Category: "Healthcare", Keywords: []string{
			"PHARMACY", "CVS", "WALGREENS", "HOSPITAL", "CLINIC", "DOCTOR", "MEDICINE",
		}},
		{Category: "Insurance", Keywords: []string{
			"INSURANCE", "PREMIUM", "GEICO", "AETNA", "BLUE CROSS",
		}},
		{Category: "Loan Payments", Keywords: []string{
			"LOAN PAYMENT", "EMI", "HOME LOAN", "AUTO LOAN", "LOAN",
		}},
		{Category: "Tax Payments", Keywords: []string{
			"TAX", "IRS", "HMRC", "PAYROLL TAX",
		}},
		{Category: "Transportation", Keywords: []string{
			"UBER", "LYFT", "SHELL", "CHEVRON", "BP", "EXXON",
			"AMTRAK", "METRO", "TAXI", "TOLL", "TRANSPORT",
		}},
		{Category: "Travel", Keywords: []string{
			"AIRBNB", "EXPEDIA", "DELTA", "UNITED", "SOUTHWEST",
			"HOTEL", "BOOKING", "AIRLINE", "TRAVEL",
		}},
		{Category: "Investments", Keywords: []string{
			"VANGUARD", "SCHWAB", "FIDELITY", "ROBINHOOD",
			"MUTUAL FUND", "ETF", "BROKERAGE",
		}},
		{Category: CategoryIncome, Keywords: []string{
			"SALARY", "PAYCHECK", "DEPOSIT", "DIVIDEND", "INTEREST", "REFUND", "REIMBURSEMENT",
		}},
		{Category: "Groceries", Keywords: []string{
			"WHOLEFDS", "WHOLEFOODS", "TRADER JOE", "SAFEWAY", "KROGER",
			"ALDI", "COSTCO", "PUBLIX", "SPROUTS",
			"GROCERY", "SUPERMARKET", "MARKET",
		}},
		{Category: "Dining", Keywords: []string{
			"STARBUCKS", "MCDONALD", "BURGER", "PIZZA", "DOMINOS",
			"RESTAURANT", "CAFE", "DOORDASH", "UBEREATS", "GRUBHUB", "DINING",
		}},
		{Category: "Shopping", Keywords: []string{
			"AMZN", "AMAZON", "TARGET", "WALMART", "BEST BUY",
			"EBAY", "IKEA", "SEPHORA", "MALL", "SHOP",
		}},
		{Category: "Utilities", Keywords: []string{
			"ELECTRIC", "WATER BILL", "UTILITY", "PG&E", "CON EDISON",
			"TELECOM", "INTERNET", "BILL",
		}},
	}
}

// recurringKeywords flags subscription-like merchants. Recurrence is
// independent of category assignment: a transaction is recurring if its
// line contains any of these, whatever category it classified into.
var recurringKeywords = []string{
	"NETFLIX", "SPOTIFY", "HULU", "DISNEY+", "GYM", "SUBSCRIPTION", "MEMBERSHIP",
}

// merchantOverrides maps matched keywords to canonical display names.
// Everything else falls back to the truncation heuristic.
var merchantOverrides = map[string]string{
	"AMZN":       "Amazon",
	"AMAZON":     "Amazon",
	"WHOLEFDS":   "Whole Foods",
	"WHOLEFOODS": "Whole Foods",
	"NETFLIX":    "Netflix",
	"UBER":       "Uber",
	"SPOTIFY":    "Spotify",
	"STARBUCKS":  "Starbucks",
}
