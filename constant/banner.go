package constant

// Banner is printed above the root command help.
const Banner = `          __                 __
 _______ / /__ ___ _____  __/ /__ ___ _____ __
/ __/ -_) / _ '/ // / _ \/ / / _ '/ // /
/_/  \__/_/\_,_/\_, / .__/_/\_,_/\_, /
              /___/_/          /___/`
