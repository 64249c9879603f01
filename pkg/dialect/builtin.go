package dialect

// Built-in presets. All of them keep the tolerant defaults for quoting;
// only the separator differs.
func init() {
	Register("csv", Default())

	tsv := Default()
	tsv.Separator = '\t'
	Register("tsv", tsv)

	pipe := Default()
	pipe.Separator = '|'
	Register("pipe", pipe)

	semicolon := Default()
	semicolon.Separator = ';'
	Register("semicolon", semicolon)
}
