package wisol

import (
	"fmt"
	"strings"
)

// Command is an entry of the Wisol AT command catalog. Only the information
// and send frame commands have a Module operation.
type Command int

const (
	CmdStatus    Command = iota // attention / check status
	CmdSendBit                  // send bit (and downlink flag)
	CmdSendFrame                // send frame (and bit)
	CmdInfoID                   // chip information 10: device ID
	CmdInfoPAC                  // chip information 11: PAC
	CmdSetPower                 // set power mode
	CmdReset                    // module reset
)

var commandTemplates = [...]string{
	CmdStatus:    "AT\n",
	CmdSendBit:   "AT$SB=%s\n",
	CmdSendFrame: "AT$SF=%s%s\n",
	CmdInfoID:    "AT$I=10\n",
	CmdInfoPAC:   "AT$I=11\n",
	CmdSetPower:  "AT$P=%u\n",
	CmdReset:     "AT$RC\n",
}

var commandNames = [...]string{
	CmdStatus:    "status",
	CmdSendBit:   "send-bit",
	CmdSendFrame: "send-frame",
	CmdInfoID:    "info-id",
	CmdInfoPAC:   "info-pac",
	CmdSetPower:  "set-power",
	CmdReset:     "reset",
}

func (c Command) valid() bool {
	return c >= 0 && int(c) < len(commandTemplates)
}

// Template returns the command text as the module documents it, with printf
// style placeholders. It panics for a command outside the catalog.
func (c Command) Template() string {
	if !c.valid() {
		panic(fmt.Sprintf("wisol: command %d is not in the catalog", int(c)))
	}
	return commandTemplates[c]
}

func (c Command) String() string {
	if !c.valid() {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return commandNames[c]
}

func StatusCmd() string {
	return CmdStatus.Template()
}

func SendBitCmd(bit string) string {
	return fmt.Sprintf(CmdSendBit.Template(), bit)
}

func SendFrameCmd(frame string, bit string) string {
	return fmt.Sprintf(CmdSendFrame.Template(), frame, bit)
}

func InfoIDCmd() string {
	return CmdInfoID.Template()
}

func InfoPACCmd() string {
	return CmdInfoPAC.Template()
}

// SetPowerCmd formats the %u placeholder of the module documentation.
func SetPowerCmd(mode uint) string {
	return fmt.Sprintf(strings.Replace(CmdSetPower.Template(), "%u", "%d", 1), mode)
}

func ResetCmd() string {
	return CmdReset.Template()
}
