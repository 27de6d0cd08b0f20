package buildinfo

const Graffiti = " _   __ _   _  _____ \n| | / /| \\ | |/  __ \\\n| |/ / |  \\| || /  \\/\n|    \\ | . ` || |    \n| |\\  \\| |\\  || \\__/\\\n\\_| \\_/\\_| \\_/ \\____/\n\n"

var (
	BuildTag string = "v0.0.0"
	Name     string = "KNC"
	Time     string = ""
)

type buildinfo struct{}

func (buildinfo) Tag() string {
	return BuildTag
}

func (buildinfo) Name() string {
	return Name
}

func (buildinfo) Time() string {
	return Time
}

var Info buildinfo
