package manparse

// Rules holds the tunable data behind the extraction heuristics: curated
// command sets, stop-words, thresholds and size caps. Rules are passed to
// parsers at construction time and never modified afterwards.
type Rules struct {
	BasicCommands        []string `toml:"basic_commands"`
	IntermediateCommands []string `toml:"intermediate_commands"`
	AdvancedCommands     []string `toml:"advanced_commands"`
	CommonCommands       []string `toml:"common_commands"`
	StopWords            []string `toml:"stop_words"`

	// Section titles searched, in order, for option definitions and examples.
	OptionSections  []string `toml:"option_sections"`
	ExampleSections []string `toml:"example_sections"`

	// Complexity thresholds applied when a command is not in a curated set.
	BasicMaxFlags       int `toml:"basic_max_flags"`
	BasicMaxExamples    int `toml:"basic_max_examples"`
	AdvancedMinFlags    int `toml:"advanced_min_flags"`
	AdvancedMinExamples int `toml:"advanced_min_examples"`

	MaxKeywords         int `toml:"max_keywords"`
	MaxRelated          int `toml:"max_related"`
	MaxDescription      int `toml:"max_description"`
	SearchSectionPrefix int `toml:"search_section_prefix"`
	MinTokenLength      int `toml:"min_token_length"`
	MaxTokenLength      int `toml:"max_token_length"`

	// KnownCommandsOnly restricts related-command scanning of the page body to
	// tokens found in the curated sets or written as name(section). Off by
	// default: any lowercase token that passes the length and stop-word
	// checks qualifies.
	KnownCommandsOnly bool `toml:"known_commands_only"`
}

// DefaultRules returns the rules used when no rules file is configured.
func DefaultRules() *Rules {
	return &Rules{
		BasicCommands: []string{
			"cat", "cd", "clear", "cp", "date", "echo", "exit", "head", "ls",
			"man", "mkdir", "mv", "pwd", "rm", "rmdir", "sort", "tail", "touch",
			"wc", "whoami", "which", "uniq", "true", "false", "sleep", "yes",
		},
		IntermediateCommands: []string{
			"chmod", "chown", "cut", "df", "diff", "du", "file", "find", "grep",
			"gzip", "kill", "less", "ln", "ps", "scp", "sed", "ssh", "tar",
			"top", "tr", "xargs", "zip", "unzip", "curl", "wget", "tee",
			"crontab", "mount", "ping", "git", "make",
		},
		AdvancedCommands: []string{
			"awk", "dd", "gdb", "iptables", "nft", "openssl", "perf", "rsync",
			"strace", "systemctl", "tcpdump", "ffmpeg", "gpg", "ip", "lsof",
			"nmap", "parted", "ss", "socat", "journalctl", "docker", "kubectl",
			"bpftrace", "ltrace", "valgrind",
		},
		CommonCommands: []string{
			"cat", "cd", "chmod", "cp", "curl", "df", "du", "echo", "find",
			"git", "grep", "head", "kill", "less", "ls", "man", "mkdir", "mv",
			"ps", "pwd", "rm", "sed", "ssh", "sudo", "tail", "tar", "top",
			"touch", "awk", "xargs", "vim",
		},
		StopWords: []string{
			"the", "and", "for", "are", "but", "not", "you", "all", "any",
			"can", "had", "her", "was", "one", "our", "out", "day", "get",
			"has", "him", "his", "how", "man", "new", "now", "old", "see",
			"two", "way", "who", "boy", "did", "its", "let", "put", "say",
			"she", "too", "use", "this", "that", "with", "from", "have",
			"will", "when", "which", "their", "there", "been", "each",
			"than", "then", "them", "these", "they", "into", "only", "also",
			"more", "such", "some", "other", "what", "were", "your", "would",
			"does", "used", "uses", "using", "file", "files", "name",
			"option", "options", "default", "value", "given", "following",
			"specified", "output", "input", "command", "commands", "may",
			"must", "should", "set", "page", "manual", "section",
			"print", "display", "show", "list", "like", "same", "where",
			"both", "either", "otherwise", "unless", "until", "while",
		},
		OptionSections:  []string{"OPTIONS", "FLAGS", "COMMAND OPTIONS", "GENERAL OPTIONS"},
		ExampleSections: []string{"EXAMPLES", "EXAMPLE", "USAGE EXAMPLES"},

		BasicMaxFlags:       5,
		BasicMaxExamples:    2,
		AdvancedMinFlags:    30,
		AdvancedMinExamples: 10,

		MaxKeywords:         20,
		MaxRelated:          20,
		MaxDescription:      500,
		SearchSectionPrefix: 500,
		MinTokenLength:      3,
		MaxTokenLength:      30,
	}
}

// KnownCommands returns the union of the curated command sets.
func (r *Rules) KnownCommands() []string {
	var out []string
	for _, set := range [][]string{r.BasicCommands, r.IntermediateCommands, r.AdvancedCommands, r.CommonCommands} {
		out = append(out, set...)
	}
	return out
}
