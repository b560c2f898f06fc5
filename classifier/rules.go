package classifier

// Category labels. Other is the fallback and never appears in the rule table.
const (
	TrafficAccidentFatality = "Traffic Accident with Fatality"
	TrafficAccidentInjury   = "Traffic Accident with Injury"
	TrafficAccident         = "Traffic Accident"
	PhysicalInjury          = "Physical Injury"
	Homicide                = "Homicide"
	SexualOffense           = "Sexual Offense"
	Carnapping              = "Carnapping"
	Robbery                 = "Robbery"
	Theft                   = "Theft"
	HumanTrafficking        = "Human Trafficking"
	IllegalDrugs            = "Illegal Drugs"
	TrafficViolation        = "Traffic Violation"
	IllegalGambling         = "Illegal Gambling"
	IllegalFirearms         = "Illegal Firearms"
	FireIncident            = "Fire Incident"
	DomesticViolence        = "Domestic Violence"
	Drowning                = "Drowning"
	MissingPerson           = "Missing Person"
	Vandalism               = "Vandalism"
	PublicDisturbance       = "Public Disturbance"
	Other                   = "Other"
)

// Rule matches when any Keyword occurs in the text and, if Requires is set,
// any of Requires occurs as well. Keywords are lower-case substrings.
type Rule struct {
	Label    string
	Keywords []string
	Requires []string
}

var accidentKeywords = []string{
	"accident", "collision", "collided", "crash", "vehicular", "hit and run", "hit-and-run",
	"sideswipe", "rammed", "bumped", "self-accident", "road mishap",
}

// DefaultRules is evaluated top to bottom and the first match wins, so more
// specific rules sit above the generic ones they overlap with. "firearm"
// contains "fire" and "trafficking" contains "traffic", hence the order of
// those groups.
var DefaultRules = []Rule{
	{
		Label:    TrafficAccidentFatality,
		Keywords: accidentKeywords,
		Requires: []string{"fatal", "dead", "death", "died", "killed", "lifeless", "dead on arrival", "doa"},
	},
	{
		Label:    TrafficAccidentInjury,
		Keywords: accidentKeywords,
		Requires: []string{"injur", "hurt", "wound", "hospital", "bruise", "laceration", "fracture"},
	},
	{Label: TrafficAccident, Keywords: accidentKeywords},
	{
		Label:    PhysicalInjury,
		Keywords: []string{"attempted murder", "frustrated murder", "attempted homicide", "frustrated homicide"},
	},
	{
		Label:    Homicide,
		Keywords: []string{"murder", "homicide", "shot dead", "stabbed to death", "killing", "killed", "slain", "parricide"},
	},
	{
		Label:    SexualOffense,
		Keywords: []string{"rape", "acts of lasciviousness", "sexual", "molest"},
	},
	{
		Label: PhysicalInjury,
		Keywords: []string{"physical injur", "assault", "mauled", "mauling", "stabbed", "stabbing", "hacked",
			"hacking", "punched", "shooting", "shot", "injured"},
	},
	{
		Label:    Carnapping,
		Keywords: []string{"carnap", "motornap", "stolen vehicle", "stolen motorcycle", "stolen car"},
	},
	{
		Label:    Robbery,
		Keywords: []string{"robbery", "robbed", "holdup", "hold-up", "hold up", "snatch", "akyat-bahay", "akyat bahay"},
	},
	{
		Label:    Theft,
		Keywords: []string{"theft", "stolen", "steal", "stole", "pickpocket", "shoplift", "burglary", "break-in"},
	},
	{
		Label:    HumanTrafficking,
		Keywords: []string{"human trafficking", "trafficking in persons", "illegal recruitment"},
	},
	{
		Label: IllegalDrugs,
		Keywords: []string{"drug", "shabu", "marijuana", "methamphetamine", "buy-bust", "buy bust",
			"ra 9165", "r.a. 9165"},
	},
	{
		Label: TrafficViolation,
		Keywords: []string{"speeding", "overspeed", "reckless driving", "drunk driving", "red light",
			"no helmet", "without helmet", "illegal parking", "counterflow", "no license", "unregistered",
			"traffic"},
	},
	{
		Label:    IllegalGambling,
		Keywords: []string{"gambling", "jueteng", "tupada", "cockfight", "sabong", "illegal numbers", "pusoy"},
	},
	{
		Label: IllegalFirearms,
		Keywords: []string{"firearm", "gun", "pistol", "rifle", "ammunition", "explosive", "grenade",
			"ra 10591", "r.a. 10591"},
	},
	{
		Label:    FireIncident,
		Keywords: []string{"fire", "blaze", "burning", "arson", "burned", "razed"},
	},
	{
		Label: DomesticViolence,
		Keywords: []string{"domestic", "vawc", "ra 9262", "r.a. 9262", "battered", "live-in partner",
			"wife", "husband"},
	},
	{Label: Drowning, Keywords: []string{"drown"}},
	{Label: MissingPerson, Keywords: []string{"missing", "disappear", "lost child"}},
	{
		Label:    Vandalism,
		Keywords: []string{"vandal", "malicious mischief", "graffiti", "damage to property"},
	},
	{
		Label: PublicDisturbance,
		Keywords: []string{"alarm and scandal", "disturbance", "drunk", "brawl", "rumble", "noise",
			"trespass", "unjust vexation"},
	},
}
