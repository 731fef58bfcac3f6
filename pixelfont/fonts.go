package pixelfont

// Font3x5 holds the digits in a 3x5 grid.
var Font3x5 = mustFont("3x5", 3, 5, map[rune][]string{
	'-': {
		"   ",
		"   ",
		"###",
		"   ",
		"   ",
	},
	'0': {
		"###",
		"# #",
		"# #",
		"# #",
		"###",
	},
	'1': {
		" # ",
		"## ",
		" # ",
		" # ",
		"###",
	},
	'2': {
		"###",
		"  #",
		"###",
		"#  ",
		"###",
	},
	'3': {
		"###",
		"  #",
		"###",
		"  #",
		"###",
	},
	'4': {
		"# #",
		"# #",
		"###",
		"  #",
		"  #",
	},
	'5': {
		"###",
		"#  ",
		"###",
		"  #",
		"###",
	},
	'6': {
		"###",
		"#  ",
		"###",
		"# #",
		"###",
	},
	'7': {
		"###",
		"  #",
		"  #",
		"  #",
		"  #",
	},
	'8': {
		"###",
		"# #",
		"###",
		"# #",
		"###",
	},
	'9': {
		"###",
		"# #",
		"###",
		"  #",
		"###",
	},
})

// Font4x7 holds the digits and space in a 4x7 grid. It fills the height
// of an 8-row matrix with one spare row.
var Font4x7 = mustFont("4x7", 4, 7, map[rune][]string{
	' ': {
		"    ",
		"    ",
		"    ",
		"    ",
		"    ",
		"    ",
		"    ",
	},
	'-': {
		"    ",
		"    ",
		"    ",
		"####",
		"    ",
		"    ",
		"    ",
	},
	'0': {
		" ## ",
		"#  #",
		"#  #",
		"#  #",
		"#  #",
		"#  #",
		" ## ",
	},
	'1': {
		" #  ",
		"##  ",
		" #  ",
		" #  ",
		" #  ",
		" #  ",
		"### ",
	},
	'2': {
		" ## ",
		"#  #",
		"   #",
		"  # ",
		" #  ",
		"#   ",
		"####",
	},
	'3': {
		" ## ",
		"#  #",
		"   #",
		"  # ",
		"   #",
		"#  #",
		" ## ",
	},
	'4': {
		"#  #",
		"#  #",
		"#  #",
		"####",
		"   #",
		"   #",
		"   #",
	},
	'5': {
		"####",
		"#   ",
		"### ",
		"   #",
		"   #",
		"#  #",
		" ## ",
	},
	'6': {
		" ## ",
		"#   ",
		"#   ",
		"### ",
		"#  #",
		"#  #",
		" ## ",
	},
	'7': {
		"####",
		"#  #",
		"   #",
		"  # ",
		" #  ",
		" #  ",
		" #  ",
	},
	'8': {
		" ## ",
		"#  #",
		"#  #",
		" ## ",
		"#  #",
		"#  #",
		" ## ",
	},
	'9': {
		" ## ",
		"#  #",
		"#  #",
		" ###",
		"   #",
		"   #",
		" ## ",
	},
})

// Fonts maps the names accepted in configuration to fonts.
var Fonts = map[string]*Font{
	Font3x5.Name: Font3x5,
	Font4x7.Name: Font4x7,
}
