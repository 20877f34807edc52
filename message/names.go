/*
 * MIT License
 *
 * Copyright (c) 2026 The SKAL Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package message

// Names of the protocol messages exchanged between the runtime and the router
// daemon. User messages must not use the "skal-" prefix.
const (
	// NameMasterBorn is the first message of the connection handshake, sent
	// by a process master actor to its local daemon.
	NameMasterBorn = "skal-init-master-born"
	// NameInitDomain is the daemon's handshake reply carrying the domain name.
	NameInitDomain = "skal-init-domain"

	// NameBorn announces a newly spawned actor to the daemon.
	NameBorn = "skal-born"
	// NameDied announces an actor's termination to the daemon.
	NameDied = "skal-died"

	// NamePing requests a NamePong echo from the daemon.
	NamePing = "skal-ping"
	// NamePong is the daemon's reply to NamePing.
	NamePong = "skal-pong"

	// NameSubscribe adds the sender to a multicast group, with an optional
	// "filter" pattern.
	NameSubscribe = "skal-subscribe"
	// NameUnsubscribe removes a subscription from a multicast group.
	NameUnsubscribe = "skal-unsubscribe"

	// NameQueryAlarms requests the set of currently active alarms.
	NameQueryAlarms = "skal-query-alarms"
	// NameAlarms carries attached alarms: actors use it to report a raised
	// or cleared alarm to the daemon, and the daemon uses it to answer
	// NameQueryAlarms.
	NameAlarms = "skal-alarms"

	// NameXoff asks the sender to pause: the recipient queue crossed its high
	// threshold.
	NameXoff = "skal-xoff"
	// NameXon tells a paused sender it may resume.
	NameXon = "skal-xon"
	// NameNtfXon registers the sender to be told when the paused peer's queue
	// has drained.
	NameNtfXon = "skal-ntf-xon"

	// NameErrorDrop notifies the original sender that its message was
	// dropped; the "reason" field tells why.
	NameErrorDrop = "skal-error-drop"

	// NameTerminate asks an actor to exit after finishing in-flight work.
	NameTerminate = "skal-terminate"
	// NameMasterTerminated reports completion of the shutdown cascade.
	NameMasterTerminated = "skal-master-terminated"

	// NameRetryTick is a runtime-internal timer tick driving ntf-xon retries.
	NameRetryTick = "skal-retry-tick"
)

// InitPrefix prefixes handshake messages, which are always handled by the
// daemon local to the connecting process even before the process knows its
// domain.
const InitPrefix = "skal-init-"

// ProtocolPrefix prefixes all protocol message names.
const ProtocolPrefix = "skal-"

// DropReasonTTL is the NameErrorDrop reason for an exhausted time-to-live.
const DropReasonTTL = "ttl"

// DropReasonNoRecipient is the NameErrorDrop reason for an unknown recipient.
const DropReasonNoRecipient = "no-recipient"
