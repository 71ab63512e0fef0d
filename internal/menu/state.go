package menu

import "fmt"

// State is a screen of the navigation loop.
type State int

const (
	SelectModel State = iota
	SelectMaxBet
	SelectMode
	RecentMarkets
	Groups
	GroupMarkets
	MarketURL
	MarketDetail
	Predict
	ConfirmAction
	OfferComment
	OfferContinue
	AutoMenu
	AutoRun
	Exit
)

var stateNames = [...]string{
	SelectModel:   "SelectModel",
	SelectMaxBet:  "SelectMaxBet",
	SelectMode:    "SelectMode",
	RecentMarkets: "RecentMarkets",
	Groups:        "Groups",
	GroupMarkets:  "GroupMarkets",
	MarketURL:     "MarketURL",
	MarketDetail:  "MarketDetail",
	Predict:       "Predict",
	ConfirmAction: "ConfirmAction",
	OfferComment:  "OfferComment",
	OfferContinue: "OfferContinue",
	AutoMenu:      "AutoMenu",
	AutoRun:       "AutoRun",
	Exit:          "Exit",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// transitions lists the states each screen may hand over to. Going back is
// an ordinary transition.
var transitions = map[State][]State{
	SelectModel:   {SelectMaxBet},
	SelectMaxBet:  {SelectMode},
	SelectMode:    {RecentMarkets, Groups, MarketURL, AutoMenu, Exit},
	RecentMarkets: {SelectMode, RecentMarkets, MarketDetail},
	Groups:        {SelectMode, GroupMarkets},
	GroupMarkets:  {Groups, MarketDetail},
	MarketURL:     {MarketDetail},
	MarketDetail:  {Predict, SelectMode},
	Predict:       {ConfirmAction, Exit},
	ConfirmAction: {OfferComment, SelectMode},
	OfferComment:  {OfferContinue},
	OfferContinue: {SelectMode, Exit},
	AutoMenu:      {AutoRun, SelectMode},
	AutoRun:       {Predict},
}

// Allowed reports whether from may move to to.
func Allowed(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AutoMode is the autonomous-mode choice.
type AutoMode int

const (
	AutoOff AutoMode = iota
	AutoConfirm
	AutoBet
	AutoBetComment
)

func (a AutoMode) betsAutomatically() bool {
	return a == AutoBet || a == AutoBetComment
}

func (a AutoMode) String() string {
	switch a {
	case AutoConfirm:
		return "confirm"
	case AutoBet:
		return "bet"
	case AutoBetComment:
		return "bet+comment"
	default:
		return "off"
	}
}
