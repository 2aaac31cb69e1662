package wire

import (
	"fmt"
	"strings"
)

// Command identifies one of the client commands the streaming server
// understands.
type Command uint8

const (
	// CmdDeviceDiscoverList lists devices visible over BTLE (query).
	CmdDeviceDiscoverList Command = iota

	// CmdDeviceConnectBTLE connects a device to the server over BTLE.
	CmdDeviceConnectBTLE

	// CmdDeviceDisconnectBTLE disconnects a device from BTLE.
	CmdDeviceDisconnectBTLE

	// CmdDeviceList lists devices connected to the server (query).
	CmdDeviceList

	// CmdDeviceConnect opens the TCP session to a connected device.
	CmdDeviceConnect

	// CmdDeviceDisconnect closes the TCP session to the device.
	CmdDeviceDisconnect

	// CmdDeviceSubscribe turns a data stream on or off.
	CmdDeviceSubscribe

	// CmdPause pauses or resumes the data flow.
	CmdPause
)

// commandDef fixes the verb spelling and argument count for a command.
// Verbs are the server's documented command set and must be preserved
// byte-for-byte.
type commandDef struct {
	cmd     Command
	verb    string
	arity   int
	isQuery bool
}

var commandDefs = []commandDef{
	{CmdDeviceDiscoverList, "device_discover_list", 0, true},
	{CmdDeviceConnectBTLE, "device_connect_btle", 2, false},
	{CmdDeviceDisconnectBTLE, "device_disconnect_btle", 1, false},
	{CmdDeviceList, "device_list", 0, true},
	{CmdDeviceConnect, "device_connect", 1, false},
	{CmdDeviceDisconnect, "device_disconnect", 0, false},
	{CmdDeviceSubscribe, "device_subscribe", 2, false},
	{CmdPause, "pause", 1, false},
}

var (
	verbToCommand = make(map[string]Command, len(commandDefs))
	cmdToDef      = make(map[Command]commandDef, len(commandDefs))
)

func init() {
	for _, def := range commandDefs {
		verbToCommand[def.verb] = def.cmd
		cmdToDef[def.cmd] = def
	}
}

// Verb returns the wire spelling of the command.
func (c Command) Verb() string {
	return cmdToDef[c].verb
}

// IsQuery reports whether the server answers this command with a data
// payload instead of an OK/ERR status.
func (c Command) IsQuery() bool {
	return cmdToDef[c].isQuery
}

// Arity returns the number of arguments the command takes.
func (c Command) Arity() int {
	return cmdToDef[c].arity
}

// IsValid reports whether c is one of the defined commands.
func (c Command) IsValid() bool {
	_, ok := cmdToDef[c]
	return ok
}

// String returns the command verb.
func (c Command) String() string {
	if def, ok := cmdToDef[c]; ok {
		return def.verb
	}
	return "unknown"
}

// CommandFromVerb resolves a wire verb to its command.
func CommandFromVerb(verb string) (Command, bool) {
	cmd, ok := verbToCommand[verb]
	return cmd, ok
}

// OnOff renders a boolean the way the server expects it.
func OnOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// EncodeCommand builds the wire line for a command, terminated with
// CRLF as the server requires. The argument count is checked against
// the command's arity.
func EncodeCommand(cmd Command, args ...string) (string, error) {
	def, ok := cmdToDef[cmd]
	if !ok {
		return "", fmt.Errorf("unknown command %d", cmd)
	}
	if len(args) != def.arity {
		return "", fmt.Errorf("command %s takes %d argument(s), got %d", def.verb, def.arity, len(args))
	}

	var b strings.Builder
	b.WriteString(def.verb)
	for _, arg := range args {
		b.WriteByte(' ')
		b.WriteString(arg)
	}
	b.WriteString("\r\n")
	return b.String(), nil
}
