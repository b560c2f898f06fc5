package report

import "go-patrol/classifier"

// Contributing factors and countermeasures per incident category. Categories
// without an entry fall back to the generic lines.
var contributingFactors = map[string]string{
	classifier.TrafficAccidentFatality: "High-speed travel on national highways and poorly lit road segments",
	classifier.TrafficAccidentInjury:   "Reckless driving, motorcycle riders without helmets and congested junctions",
	classifier.TrafficAccident:         "Driver inattention, road obstructions and inadequate traffic signage",
	classifier.TrafficViolation:        "Weak enforcement presence along major thoroughfares",
	classifier.PhysicalInjury:          "Alcohol-related altercations and unresolved personal disputes",
	classifier.Homicide:                "Escalated personal conflicts and availability of deadly weapons",
	classifier.SexualOffense:           "Victims in isolated locations and underreporting within households",
	classifier.Carnapping:              "Vehicles left unattended in unsecured parking areas",
	classifier.Robbery:                 "Cash-handling establishments and pedestrians in poorly lit areas",
	classifier.Theft:                   "Unsecured property and low visibility in residential and commercial areas",
	classifier.HumanTrafficking:        "Economic vulnerability exploited through false job offers",
	classifier.IllegalDrugs:            "Active distribution networks in densely populated barangays",
	classifier.IllegalGambling:         "Community tolerance of gambling as recreation",
	classifier.IllegalFirearms:         "Circulation of loose firearms and expired licenses",
	classifier.FireIncident:            "Faulty electrical wiring and unattended open flames",
	classifier.DomesticViolence:        "Household stress, substance abuse and fear of reporting",
	classifier.Drowning:                "Unsupervised swimming at beaches and rivers without lifeguards",
	classifier.MissingPerson:           "Minors leaving home and delayed reporting by families",
	classifier.Vandalism:               "Unmonitored public property and youth idleness at night",
	classifier.PublicDisturbance:       "Late-night drinking sessions and neighborhood disputes",
}

var recommendations = map[string]string{
	classifier.TrafficAccidentFatality: "Deploy speed enforcement and road safety checkpoints on accident-prone highway segments",
	classifier.TrafficAccidentInjury:   "Intensify helmet and license inspections with the municipal traffic units",
	classifier.TrafficAccident:         "Coordinate with public works on signage, lighting and road repairs at recurring sites",
	classifier.TrafficViolation:        "Increase mobile traffic patrols during peak travel hours",
	classifier.PhysicalInjury:          "Enforce liquor ban hours and mediate disputes through barangay officials",
	classifier.Homicide:                "Prioritize case build-up and intelligence gathering on persons of interest",
	classifier.SexualOffense:           "Strengthen women and children protection desks and community reporting channels",
	classifier.Carnapping:              "Conduct vehicle checkpoints and promote registered, secured parking",
	classifier.Robbery:                 "Increase foot and mobile patrols near commercial establishments after dark",
	classifier.Theft:                   "Run crime prevention seminars and encourage CCTV installation in hotspot barangays",
	classifier.HumanTrafficking:        "Partner with labor offices to verify recruitment agencies and inspect transport terminals",
	classifier.IllegalDrugs:            "Sustain anti-illegal drug operations and community-based rehabilitation referrals",
	classifier.IllegalGambling:         "Conduct regular operations against gambling dens with barangay support",
	classifier.IllegalFirearms:         "Intensify Oplan Katok visits and loose firearms recovery operations",
	classifier.FireIncident:            "Coordinate fire safety inspections with the fire protection bureau",
	classifier.DomesticViolence:        "Expand VAWC help desks and barangay-level counseling referrals",
	classifier.Drowning:                "Post warning signs and request lifeguard presence at popular swimming areas",
	classifier.MissingPerson:           "Fast-track missing person alerts through social media and barangay networks",
	classifier.Vandalism:               "Improve lighting and schedule night patrols around public facilities",
	classifier.PublicDisturbance:       "Enforce curfew and noise ordinances with barangay tanods",
}

const (
	genericFactor         = "Incidents without a recognized pattern that need case-by-case review"
	genericRecommendation = "Review unclassified incidents and update the categorization rules"
)

func factorFor(label string) string {
	if f, ok := contributingFactors[label]; ok {
		return f
	}
	return genericFactor
}

func recommendationFor(label string) string {
	if r, ok := recommendations[label]; ok {
		return r
	}
	return genericRecommendation
}

// Risk levels by share of all incidents.
const (
	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
)

func riskLevel(percent float64) string {
	switch {
	case percent >= 30:
		return RiskHigh
	case percent >= 15:
		return RiskMedium
	default:
		return RiskLow
	}
}
