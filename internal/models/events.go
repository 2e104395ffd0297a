package models

// MetaEvent is one of the ads platform's standard event names.
type MetaEvent string

const (
	EventPageView             MetaEvent = "PageView"
	EventViewContent          MetaEvent = "ViewContent"
	EventAddToCart            MetaEvent = "AddToCart"
	EventInitiateCheckout     MetaEvent = "InitiateCheckout"
	EventLead                 MetaEvent = "Lead"
	EventPurchase             MetaEvent = "Purchase"
	EventAddPaymentInfo       MetaEvent = "AddPaymentInfo"
	EventCompleteRegistration MetaEvent = "CompleteRegistration"
)

// StandardEvents is the closed set accepted anywhere an event name is stored.
var StandardEvents = []MetaEvent{
	EventPageView,
	EventViewContent,
	EventAddToCart,
	EventInitiateCheckout,
	EventLead,
	EventPurchase,
	EventAddPaymentInfo,
	EventCompleteRegistration,
}

func (e MetaEvent) Valid() bool {
	for _, s := range StandardEvents {
		if e == s {
			return true
		}
	}
	return false
}

// DedupeEvents drops repeated names, keeping the first occurrence.
func DedupeEvents(events []MetaEvent) []MetaEvent {
	seen := make(map[MetaEvent]struct{}, len(events))
	out := make([]MetaEvent, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
