package strategy

// pattern.go — predicados puros sobre ventanas cortas de barras.
//
// Los dos detectores son stateless y window-local: misma ventana de entrada,
// mismo resultado, barra a barra. No miran nada a la derecha de la ventana.

import "github.com/alejandrodnm/fxbot/internal/domain"

// DetectOrderBlock reconoce una barra de reversión que barre el extremo de
// la barra anterior (huella institucional).
//
//   - Long: prev bajista, curr alcista y el low de curr perfora el low de prev.
//   - Short: prev alcista, curr bajista y el high de curr perfora el high de prev.
func DetectOrderBlock(prev, curr domain.Bar) (domain.Direction, bool) {
	if prev.IsDown() && curr.IsUp() && curr.Low < prev.Low {
		return domain.Long, true
	}
	if prev.IsUp() && curr.IsDown() && curr.High > prev.High {
		return domain.Short, true
	}
	return 0, false
}

// DetectGap reconoce un fair value gap en tres barras consecutivas: un
// intervalo de precio sin tocar entre b0 y b2, con b1 como barra intermedia
// que crea el desequilibrio.
//
//   - Gap alcista (Long): b0 y b2 alcistas y b0.High < b2.Low.
//   - Gap bajista (Short): b0 y b2 bajistas y b0.Low > b2.High.
//
// La comparación high/low de tres barras es la condición autoritativa; el
// cuerpo de la barra intermedia no se restringe (un doji intermedio vale).
// Triples asimétricos o contradictorios no producen señal.
func DetectGap(b0, b1, b2 domain.Bar) (domain.Direction, bool) {
	_ = b1 // la barra intermedia solo aporta el hueco, no una condición

	if b0.IsUp() && b2.IsUp() && b0.High < b2.Low {
		return domain.Long, true
	}
	if b0.IsDown() && b2.IsDown() && b0.Low > b2.High {
		return domain.Short, true
	}
	return 0, false
}
