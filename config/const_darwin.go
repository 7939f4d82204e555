package config

const (
	_etc = "/usr/local/etc/com.github.uhppoted/sheets2json"
	_var = "/usr/local/var/com.github.uhppoted/sheets2json"

	DEFAULT_WORKDIR     = _var
	DEFAULT_CREDENTIALS = _etc + "/.google/credentials.json"
	DEFAULT_ENV         = _etc + "/sheets2json.env"
)
