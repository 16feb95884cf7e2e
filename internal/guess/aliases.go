package guess

// DefaultAliases maps canonical lower-case game names to spellings people
// commonly type instead.
var DefaultAliases = map[string][]string{
	"mario":           {"super mario", "super mario bros", "mario bros", "smb"},
	"zelda":           {"the legend of zelda", "legend of zelda", "loz"},
	"pokemon":         {"pokémon", "pocket monsters", "pkmn"},
	"final fantasy":   {"finalfantasy", "ffantasy"},
	"sonic":           {"sonic the hedgehog", "sonic hedgehog"},
	"metroid":         {"super metroid", "metroid prime"},
	"kirby":           {"kirbys dream land", "kirby dream land"},
	"donkey kong":     {"donkeykong", "dkc", "donkey kong country"},
	"street fighter":  {"streetfighter", "sf2"},
	"mega man":        {"megaman", "rockman"},
	"megaman":         {"mega man", "rockman"},
	"castlevania":     {"akumajo dracula", "dracula"},
	"chrono trigger":  {"chronotrigger", "chrono"},
	"kingdom hearts":  {"kingdomhearts"},
	"smash":           {"super smash bros", "smash bros", "ssb"},
	"mortal kombat":   {"mortalkombat", "mortal combat"},
	"tetris":          {"tetris theme", "korobeiniki"},
	"earthbound":      {"mother 2", "mother2"},
	"halo":            {"halo theme", "halo combat evolved"},
	"minecraft":       {"minecraft theme", "sweden"},
	"undertale":       {"under tale", "megalovania"},
	"animal crossing": {"animalcrossing", "doubutsu no mori"},
	"pacman":          {"pac man", "pac-man"},
	"pac man":         {"pacman", "pac-man"},
	"doom":            {"doom eternal", "e1m1"},
}
