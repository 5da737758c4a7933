package negotiation

import (
	"fmt"
	"strings"

	"estatewise/server/internal/models"
)

var genericScript = models.NegotiationScript{
	Opening:   "I'm interested in this property and would like to discuss making an offer.",
	KeyPoints: []string{"Discuss property features", "Ask about seller's timeline", "Mention financing pre-approval"},
	Closing:   "I'll prepare a formal offer based on our discussion.",
}

// BuildScript writes talking points for a strategy. A nil strategy gets a
// neutral opener.
func BuildScript(s *models.NegotiationStrategy) models.NegotiationScript {
	if s == nil {
		return cloneScript(genericScript)
	}

	switch s.Kind {
	case models.KindBelowMarketOffer:
		reflects := "My offer reflects current market conditions"
		if len(s.Justification) > 0 {
			reflects = "My offer reflects " + strings.Join(s.Justification, ", ")
		}
		return models.NegotiationScript{
			Opening: fmt.Sprintf("After carefully analyzing the property and current market conditions, I'd like to make an offer of %s.", dollars(deref(s.OfferPrice))),
			KeyPoints: []string{
				"I've done extensive research on comparable properties in the area",
				reflects,
				"This price point works with my investment criteria and budget constraints",
			},
			Closing: "I'm prepared to move forward quickly with this offer and can provide proof of funds or pre-approval.",
		}

	case models.KindIncrementalNegotiation:
		offer := deref(s.OfferPrice)
		maxPrice := offer * 1.05
		if s.MaxPrice != nil {
			maxPrice = *s.MaxPrice
		}
		return models.NegotiationScript{
			Opening: fmt.Sprintf("I'd like to start the conversation with an offer of %s, though I understand we may need to discuss the price further.", dollars(offer)),
			KeyPoints: []string{
				"I'm flexible and open to finding a price that works for both of us",
				"I value clear communication throughout the negotiation process",
				"My initial offer is based on my analysis of the property and market",
			},
			Closing: fmt.Sprintf("While %s is my starting point, I'm willing to work with you to find a mutually acceptable price. My absolute maximum budget for this property would be around %s.",
				dollars(offer), dollars(maxPrice)),
		}

	case models.KindConditionalPriceTiers:
		points := make([]string, len(s.Tiers))
		for i, tier := range s.Tiers {
			points[i] = fmt.Sprintf("Option %d: %s - %s", i+1, tier.Terms, dollars(tier.Price))
		}
		return models.NegotiationScript{
			Opening:   "I'd like to propose a flexible pricing structure based on different terms that might be valuable to you.",
			KeyPoints: points,
			Closing:   "These options give you flexibility to choose what works best for your situation. I'm happy to discuss any of these approaches in more detail.",
		}

	case models.KindClosingTimeline:
		points := make([]string, 0, len(s.Options)+1)
		for _, o := range s.Options {
			points = append(points, "Option: "+o)
		}
		if len(s.Justification) > 0 {
			points = append(points, "I'm offering this flexibility because "+strings.ToLower(s.Justification[0]))
		}
		return models.NegotiationScript{
			Opening:   "I understand that timing can be as important as price in real estate transactions. I'd like to discuss how we can structure the closing timeline to best meet your needs.",
			KeyPoints: points,
			Closing:   "By accommodating your preferred timeline, we can create a smoother transaction process for both of us. What timeline would work best for you?",
		}

	case models.KindContingencyAdjustments:
		points := make([]string, 0, len(contingencyOptions)+1)
		for _, o := range contingencyOptions {
			points = append(points, "I can "+strings.ToLower(o.description))
		}
		if len(s.Justification) > 0 {
			points = append(points, "These adjustments benefit you because "+strings.ToLower(s.Justification[0]))
		}
		return models.NegotiationScript{
			Opening:   "To strengthen my offer, I'm willing to adjust the standard contingencies to reduce uncertainty for you as the seller.",
			KeyPoints: points,
			Closing:   "These modifications to standard contingencies demonstrate my serious interest in the property and confidence in completing the purchase.",
		}

	case models.KindEarnestMoney:
		return models.NegotiationScript{
			Opening: fmt.Sprintf("To demonstrate my serious interest and financial capability, I'm prepared to offer an increased earnest money deposit of %s instead of the standard %s.",
				dollars(deref(s.IncreasedDeposit)), dollars(deref(s.StandardDeposit))),
			KeyPoints: []string{
				"This larger deposit shows my commitment to completing the purchase",
				"It provides you with greater security in accepting my offer",
				"I'm confident in my financing and ability to close",
			},
			Closing: "The increased earnest money deposit demonstrates that I'm a serious buyer with the financial means to complete this transaction smoothly.",
		}

	case models.KindRepairCredits:
		return models.NegotiationScript{
			Opening: fmt.Sprintf("Rather than requesting a price reduction, I'd like to propose %s in repair credits to address some issues with the property.", dollars(deref(s.CreditAmount))),
			KeyPoints: []string{
				"This approach maintains your asking price for appraisal and neighborhood comp purposes",
				"It allows me to address the property issues directly after closing",
				"This can be a tax advantage for both of us compared to a price reduction",
			},
			Closing: "This structure gives you the sale price you want while acknowledging the property's condition and necessary improvements.",
		}

	case models.KindAsIsPurchase:
		return models.NegotiationScript{
			Opening: "I'm prepared to purchase the property as-is, without requesting any repairs, but would need to account for the condition in my offer price.",
			KeyPoints: []string{
				"I'll conduct an inspection for information only, not for negotiation",
				"This eliminates the risk of repair negotiations or surprises later",
				fmt.Sprintf("My offer would need to be adjusted by approximately %s to account for the needed repairs", dollars(deref(s.DiscountNeeded))),
				"This creates a clean, simple transaction with no contingencies for property condition",
			},
			Closing: "This approach gives you certainty that the deal won't fall through due to property condition issues, while allowing me to address the needed repairs after closing.",
		}

	case models.KindSellerPainPoints:
		points := make([]string, len(painPointSolutions))
		for i, o := range painPointSolutions {
			points[i] = fmt.Sprintf("If %s is a concern, I could %s", strings.ToLower(o.name), strings.ToLower(o.description))
		}
		return models.NegotiationScript{
			Opening:   "I'd like to understand if there are any specific challenges or concerns you have about selling this property, beyond just the price.",
			KeyPoints: points,
			Closing:   "By addressing these specific concerns, we can create a transaction that truly works for your situation, not just a standard deal focused only on price.",
		}

	case models.KindSellerFinancing:
		if s.FinancingStructure != nil {
			return financingScript(s.FinancingStructure)
		}
	}

	return typeScript(s.Type)
}

func financingScript(f *models.FinancingStructure) models.NegotiationScript {
	total := f.DownPayment + f.BankLoan + f.SellerFinancing
	share := func(v float64) string {
		if total <= 0 {
			return "0%"
		}
		return fmt.Sprintf("%.0f%%", v/total*100)
	}
	return models.NegotiationScript{
		Opening: "I'd like to propose a creative financing structure that might benefit both of us, involving some seller financing.",
		KeyPoints: []string{
			fmt.Sprintf("I would make a %s down payment (%s)", dollars(f.DownPayment), share(f.DownPayment)),
			fmt.Sprintf("Get bank financing for %s (%s)", dollars(f.BankLoan), share(f.BankLoan)),
			fmt.Sprintf("And ask you to carry a note for %s (%s)", dollars(f.SellerFinancing), share(f.SellerFinancing)),
			fmt.Sprintf("The seller note would be at %s", f.SellerNoteTerms),
			fmt.Sprintf("This would provide you with monthly income of approximately %s", dollars(f.MonthlyPaymentToSeller)),
		},
		Closing: "This structure provides you with some immediate cash at closing, plus an ongoing income stream at an interest rate higher than most savings accounts or CDs.",
	}
}

// typeScript covers strategies without a dedicated template.
func typeScript(t models.StrategyType) models.NegotiationScript {
	switch t {
	case models.StrategyPrice:
		return models.NegotiationScript{
			Opening: "I'd like to make an offer for the property based on my analysis.",
			KeyPoints: []string{
				"This offer is based on my careful analysis of the property and market",
				"I'm pre-approved for financing and ready to move forward",
				"I can be flexible on closing timeline to accommodate your needs",
			},
			Closing: "I look forward to your response and am open to discussing the details further.",
		}
	case models.StrategyTerms:
		return models.NegotiationScript{
			Opening: "I'd like to discuss some flexible terms that might make my offer more attractive to you beyond just the price.",
			KeyPoints: []string{
				"I can be flexible on closing timeline to accommodate your needs",
				"I'm willing to work with you on contingencies to reduce uncertainty",
				"My goal is to create a smooth transaction process for both of us",
			},
			Closing: "By focusing on these terms, we can create a win-win agreement that addresses both our needs.",
		}
	case models.StrategyCreative:
		return models.NegotiationScript{
			Opening: "I'd like to propose a creative approach to this transaction that might address both our needs better than a standard offer.",
			KeyPoints: []string{
				"I've thought about ways to structure this deal that go beyond just the price",
				"My goal is to find a win-win solution that addresses your specific needs",
				"This approach could provide benefits that a traditional transaction might not",
			},
			Closing: "I'm open to discussing this creative approach further and adapting it based on your feedback and specific situation.",
		}
	}
	return cloneScript(genericScript)
}

func cloneScript(s models.NegotiationScript) models.NegotiationScript {
	s.KeyPoints = append([]string(nil), s.KeyPoints...)
	return s
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
