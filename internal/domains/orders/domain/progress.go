package domain

// Presentation is the single progress shape every portal surface renders
// from. It is derived exclusively from the canonical status so that the
// dashboard, portal home, and project pages can never disagree.
type Presentation struct {
	Percent    int
	Step       int
	ColorClass string
	Icon       string
}

var presentationTable = map[Status]Presentation{
	StatusPendingPayment:    {Percent: 0, Step: 0, ColorClass: "text-slate-400", Icon: "credit-card"},
	StatusPaid:              {Percent: 25, Step: 1, ColorClass: "text-sky-500", Icon: "clipboard"},
	StatusOnboardingPending: {Percent: 25, Step: 1, ColorClass: "text-sky-500", Icon: "clipboard"},
	StatusBriefing:          {Percent: 25, Step: 1, ColorClass: "text-sky-500", Icon: "clipboard"},
	StatusBuilding:          {Percent: 50, Step: 2, ColorClass: "text-amber-500", Icon: "hammer"},
	StatusPreview:           {Percent: 75, Step: 3, ColorClass: "text-violet-500", Icon: "eye"},
	StatusReview:            {Percent: 75, Step: 3, ColorClass: "text-violet-500", Icon: "eye"},
	StatusDelivered:         {Percent: 100, Step: 4, ColorClass: "text-emerald-500", Icon: "rocket"},
	StatusCancelled:         {Percent: 0, Step: -1, ColorClass: "text-slate-300", Icon: "ban"},
}

// Resolve maps a canonical status to its presentation. It is total and pure;
// unknown statuses resolve like cancelled ones, hidden from the progress UI.
func Resolve(status Status) Presentation {
	if p, ok := presentationTable[status]; ok {
		return p
	}
	return Presentation{Percent: 0, Step: -1, ColorClass: "text-slate-300", Icon: "alert-triangle"}
}
