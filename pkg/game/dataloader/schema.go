package dataloader

// The types below mirror the YAML layout of a game description.

type gameDoc struct {
	Name       string            `yaml:"name"`
	Energy     energyDoc         `yaml:"energy"`
	Resources  resourcesDoc      `yaml:"resources"`
	Reductions []reductionDoc    `yaml:"reductions"`
	Templates  map[string]reqDoc `yaml:"templates"`
	Weaknesses []weaknessDoc     `yaml:"weaknesses"`
	Regions    []regionDoc       `yaml:"regions"`
	Pickups    []pickupDoc       `yaml:"pickups"`
	Junk       pickupDoc         `yaml:"junk"`
	Fixed      []fixedDoc        `yaml:"fixed"`
	Starting   []amountDoc       `yaml:"starting_items"`
	Start      string            `yaml:"start"`
	Victory    *reqDoc           `yaml:"victory"`
}

type energyDoc struct {
	Base    *int   `yaml:"base"`
	PerTank *int   `yaml:"per_tank"`
	Tank    string `yaml:"tank"`
}

type resourceDoc struct {
	Short string `yaml:"short"`
	Long  string `yaml:"long"`
	Max   int    `yaml:"max"`
}

type resourcesDoc struct {
	Items   []resourceDoc `yaml:"items"`
	Events  []resourceDoc `yaml:"events"`
	Tricks  []resourceDoc `yaml:"tricks"`
	Damage  []resourceDoc `yaml:"damage"`
	Version []resourceDoc `yaml:"version"`
	Misc    []resourceDoc `yaml:"misc"`
}

type reductionDoc struct {
	Damage     string  `yaml:"damage"`
	Inventory  string  `yaml:"inventory"`
	Multiplier float64 `yaml:"multiplier"`
}

// reqDoc is one requirement. Exactly one of its forms is set: a resource
// (optionally with kind, amount and negate), damage, not, and, or, template,
// trivial or impossible.
type reqDoc struct {
	Resource   string   `yaml:"resource"`
	Kind       string   `yaml:"kind"`
	Amount     *int     `yaml:"amount"`
	Negate     bool     `yaml:"negate"`
	Damage     string   `yaml:"damage"`
	Not        *reqDoc  `yaml:"not"`
	And        []reqDoc `yaml:"and"`
	Or         []reqDoc `yaml:"or"`
	Template   string   `yaml:"template"`
	Trivial    bool     `yaml:"trivial"`
	Impossible bool     `yaml:"impossible"`
	Comment    string   `yaml:"comment"`
}

type weaknessDoc struct {
	Name        string  `yaml:"name"`
	Type        string  `yaml:"type"`
	Requirement *reqDoc `yaml:"requirement"`
}

type regionDoc struct {
	Name  string    `yaml:"name"`
	Areas []areaDoc `yaml:"areas"`
}

type areaDoc struct {
	Name        string          `yaml:"name"`
	DefaultNode string          `yaml:"default_node"`
	Nodes       []nodeDoc       `yaml:"nodes"`
	Connections []connectionDoc `yaml:"connections"`
}

type nodeDoc struct {
	Name        string  `yaml:"name"`
	Kind        string  `yaml:"kind"`
	Heal        bool    `yaml:"heal"`
	Major       bool    `yaml:"major"`
	PickupIndex *int    `yaml:"pickup_index"`
	Event       string  `yaml:"event"`
	Target      string  `yaml:"target"`
	Weakness    string  `yaml:"weakness"`
	Collect     *reqDoc `yaml:"collect"`
	Leave       *reqDoc `yaml:"leave"`
}

type connectionDoc struct {
	From        string  `yaml:"from"`
	To          string  `yaml:"to"`
	TwoWay      bool    `yaml:"two_way"`
	Requirement *reqDoc `yaml:"requirement"`
}

type amountDoc struct {
	Resource string `yaml:"resource"`
	Amount   *int   `yaml:"amount"`
}

type probabilityDoc struct {
	Multiplier *float64 `yaml:"multiplier"`
	Offset     float64  `yaml:"offset"`
}

type pickupDoc struct {
	Name        string         `yaml:"name"`
	Category    string         `yaml:"category"`
	Progression bool           `yaml:"progression"`
	Count       *int           `yaml:"count"`
	Resources   []amountDoc    `yaml:"resources"`
	Probability probabilityDoc `yaml:"probability"`
}

type fixedDoc struct {
	Index  int    `yaml:"index"`
	Pickup string `yaml:"pickup"`
}
