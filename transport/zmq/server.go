package zmq

import (
	"encoding/json"
	"fmt"

	"github.com/YasiruR/didcomm-resolver/domain"
	"github.com/YasiruR/didcomm-resolver/domain/models"
	zmq "github.com/pebbe/zmq4"
	"github.com/tryfix/log"
)

type Server struct {
	skt      *zmq.Socket
	handlers map[models.MsgType]chan models.Message
	compactr *compactor
	log      log.Logger
}

func NewServer(zmqCtx *zmq.Context, c *domain.Container) (*Server, error) {
	skt, err := zmqCtx.NewSocket(zmq.REP)
	if err != nil {
		return nil, fmt.Errorf(`constructing zmq server socket failed - %v`, err)
	}

	if err = skt.Bind(c.Cfg.Endpoint); err != nil {
		return nil, fmt.Errorf(`binding zmq socket to %s failed - %v`, c.Cfg.Endpoint, err)
	}

	compactr, err := newCompactor()
	if err != nil {
		return nil, fmt.Errorf(`constructing compactor failed - %v`, err)
	}

	return &Server{
		skt:      skt,
		handlers: make(map[models.MsgType]chan models.Message),
		compactr: compactr,
		log:      c.Log,
	}, nil
}

func (s *Server) AddHandler(typ models.MsgType, notifier chan models.Message) {
	s.handlers[typ] = notifier
}

func (s *Server) RemoveHandler(typ models.MsgType) {
	delete(s.handlers, typ)
}

func (s *Server) Start() error {
	for {
		frames, err := s.skt.RecvMessageBytes(0)
		if err != nil {
			if err.Error() != errTempUnavail {
				s.log.Error(fmt.Sprintf(`receiving zmq message by receiver failed - %v`, err))
			}
			s.sendAck(false)
			continue
		}

		if len(frames) != 2 {
			s.log.Error(`received an empty/invalid message`, frames)
			s.sendAck(false)
			continue
		}

		var meta metadata
		if err = json.Unmarshal(frames[0], &meta); err != nil {
			s.log.Error(fmt.Sprintf(`unmarshalling metadata frame failed - %v`, err))
			s.sendAck(false)
			continue
		}

		typ, err := models.MsgTypeByName(meta.Type)
		if err != nil {
			s.log.Error(fmt.Sprintf(`received a message with an unknown type (%s)`, meta.Type))
			s.sendAck(false)
			continue
		}

		data, err := s.compactr.decompress(frames[1])
		if err != nil {
			s.log.Error(fmt.Sprintf(`reading payload frame failed - %v`, err))
			s.sendAck(false)
			continue
		}

		notifier, ok := s.handlers[typ]
		if !ok {
			s.log.Error(fmt.Sprintf(`no handler defined for the received message type (%s)`, meta.Type))
			s.sendAck(false)
			continue
		}

		notifier <- models.Message{Type: typ, Sender: meta.Sender, Data: data}
		s.sendAck(true)
	}
}

func (s *Server) sendAck(success bool) {
	msg := successRes
	if !success {
		msg = failedRes
	}

	if _, err := s.skt.Send(msg, 0); err != nil {
		s.log.Error(fmt.Sprintf(`sending zmq message by receiver failed - %v`, err))
	}
}

func (s *Server) Stop() error {
	return s.skt.Close()
}
